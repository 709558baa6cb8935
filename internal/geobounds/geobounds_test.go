package geobounds

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/gomask/internal/config"
)

type fakeChat struct {
	reply string
	err   error
	calls int
	last  openai.ChatCompletionRequest
}

func (f *fakeChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: f.reply}}},
	}, nil
}

func geoConfig() config.GeoConfig {
	return config.DefaultConfig().Geo
}

func TestBoundingBox_Validate(t *testing.T) {
	tests := []struct {
		name    string
		box     BoundingBox
		wantErr string
	}{
		{name: "valid", box: BoundingBox{MinLat: 2.5, MaxLat: 3.8, MinLng: 31.5, MaxLng: 33.5}},
		{name: "lat below range", box: BoundingBox{MinLat: -90.1, MaxLat: 0, MinLng: 0, MaxLng: 1}, wantErr: "latitude"},
		{name: "lng above range", box: BoundingBox{MinLat: 0, MaxLat: 1, MinLng: 0, MaxLng: 180.5}, wantErr: "longitude"},
		{name: "lat inverted", box: BoundingBox{MinLat: 5, MaxLat: 1, MinLng: 0, MaxLng: 1}, wantErr: "min_lat"},
		{name: "lng equal", box: BoundingBox{MinLat: 0, MaxLat: 1, MinLng: 3, MaxLng: 3}, wantErr: "min_lng"},
		{name: "nan latitude", box: BoundingBox{MinLat: math.NaN(), MaxLat: 1, MinLng: 0, MaxLng: 1}, wantErr: "finite"},
		{name: "infinite longitude", box: BoundingBox{MinLat: 0, MaxLat: 1, MinLng: 0, MaxLng: math.Inf(1)}, wantErr: "finite"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.box.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var ge *Error
			require.ErrorAs(t, err, &ge)
			assert.Equal(t, StageValidate, ge.Stage)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParse(t *testing.T) {
	reply := "<think>hmm</think>Here you go:\n```json\n" +
		`{"min_lat": 2.5, "max_lat": 3.8, "min_lng": 31.5, "max_lng": 33.5, "description": "Northern {Uganda}"}` +
		"\n```"

	box, err := Parse(reply)
	require.NoError(t, err)
	assert.Equal(t, BoundingBox{MinLat: 2.5, MaxLat: 3.8, MinLng: 31.5, MaxLng: 33.5, Description: "Northern {Uganda}"}, box)
	assert.True(t, box.Contains(3, 32))
	assert.False(t, box.Contains(4, 32))
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		stage Stage
	}{
		{name: "no json", reply: "I cannot help with that", stage: StageParse},
		{name: "missing key", reply: `{"min_lat": 1, "max_lat": 2, "min_lng": 3}`, stage: StageValidate},
		{name: "quoted number", reply: `{"min_lat": "1", "max_lat": 2, "min_lng": 3, "max_lng": 4}`, stage: StageValidate},
		{name: "out of range", reply: `{"min_lat": -90.1, "max_lat": 2, "min_lng": 3, "max_lng": 4}`, stage: StageValidate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.reply)
			var ge *Error
			require.ErrorAs(t, err, &ge)
			assert.Equal(t, tt.stage, ge.Stage)
		})
	}
}

func TestExtractJSON(t *testing.T) {
	got, err := ExtractJSON(`prefix {"a": {"b": "}"}} suffix {"c": 1}`)
	require.NoError(t, err)
	assert.Equal(t, `{"a": {"b": "}"}}`, got)

	_, err = ExtractJSON("[1, 2]")
	assert.Error(t, err)
}

func TestLLMResolver_Resolve(t *testing.T) {
	chat := &fakeChat{reply: `{"min_lat": 0.1, "max_lat": 0.5, "min_lng": 32.4, "max_lng": 32.7}`}
	r := NewLLMResolverWithClient(chat, geoConfig(), nil)

	box, err := r.Resolve(context.Background(), "Kampala")
	require.NoError(t, err)

	assert.Equal(t, 1, chat.calls)
	assert.Equal(t, "deepseek-chat", chat.last.Model)
	assert.Equal(t, 500, chat.last.MaxTokens)
	assert.InDelta(t, 0.3, chat.last.Temperature, 1e-6)
	require.Len(t, chat.last.Messages, 1)
	assert.Contains(t, chat.last.Messages[0].Content, `"Kampala"`)
	assert.Equal(t, "Kampala", box.Description, "description falls back to the request")
}

func TestLLMResolver_Failures(t *testing.T) {
	t.Run("transport error", func(t *testing.T) {
		chat := &fakeChat{err: errors.New("401 unauthorized")}
		_, err := NewLLMResolverWithClient(chat, geoConfig(), nil).Resolve(context.Background(), "Gulu")

		var ge *Error
		require.ErrorAs(t, err, &ge)
		assert.Equal(t, StageRequest, ge.Stage)
		assert.Equal(t, "Gulu", ge.Description)
		assert.Equal(t, 1, chat.calls, "no retry")
	})

	t.Run("invalid bounds", func(t *testing.T) {
		chat := &fakeChat{reply: `{"min_lat": -90.1, "max_lat": 1, "min_lng": 0, "max_lng": 1}`}
		_, err := NewLLMResolverWithClient(chat, geoConfig(), nil).Resolve(context.Background(), "nowhere")

		var ge *Error
		require.ErrorAs(t, err, &ge)
		assert.Equal(t, StageValidate, ge.Stage)
		assert.Equal(t, "nowhere", ge.Description)
	})

	t.Run("empty description", func(t *testing.T) {
		chat := &fakeChat{}
		_, err := NewLLMResolverWithClient(chat, geoConfig(), nil).Resolve(context.Background(), "  ")
		assert.Error(t, err)
		assert.Equal(t, 0, chat.calls)
	})
}

func TestNewLLMResolver_RequiresKey(t *testing.T) {
	_, err := NewLLMResolver(geoConfig(), "", nil)
	var ge *Error
	require.ErrorAs(t, err, &ge)
	assert.Contains(t, err.Error(), "api key is required")

	r, err := NewLLMResolver(geoConfig(), "sk-test", nil)
	require.NoError(t, err)
	assert.NotNil(t, r)
}

func TestStaticResolver(t *testing.T) {
	box, err := StaticResolver{Box: BoundingBox{MinLat: 1, MaxLat: 2, MinLng: 3, MaxLng: 4}}.Resolve(context.Background(), "custom")
	require.NoError(t, err)
	assert.Equal(t, "custom", box.Description)

	_, err = StaticResolver{Box: BoundingBox{MinLat: 2, MaxLat: 1, MinLng: 3, MaxLng: 4}}.Resolve(context.Background(), "bad")
	var ge *Error
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, "bad", ge.Description)
}
