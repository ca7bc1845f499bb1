package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/seguros-api/internal/application/dto"
)

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"score":80}`, extractJSON("```json\n{\"score\":80}\n```"))
	assert.Equal(t, `{"score":10}`, extractJSON(`Claro: {"score":10} listo`))
	assert.Equal(t, "", extractJSON("sin json"))
}

func TestToScoreDTO_AcotaYCorrigeTemperatura(t *testing.T) {
	out := toScoreDTO(llmScorePayload{Score: 130, Temperature: "cold"})
	assert.Equal(t, 100, out.Score)
	assert.Equal(t, "hot", out.Temperature)

	out = toScoreDTO(llmScorePayload{Score: -5, Temperature: "HOT"})
	assert.Equal(t, 0, out.Score)
	assert.Equal(t, "cold", out.Temperature)

	out = toScoreDTO(llmScorePayload{Score: 55, Temperature: " Warm "})
	assert.Equal(t, "warm", out.Temperature)
}

func TestAnthropicService_ScoreLead(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"{\"score\":72,\"temperature\":\"hot\",\"next_action\":\"Llamar hoy\",\"reasoning\":\"Etapa avanzada\"}"}]}`))
	}))
	defer srv.Close()

	svc := NewAnthropicService("test-key", "modelo").WithBaseURL(srv.URL)
	out, err := svc.ScoreLead(context.Background(), dto.LeadScoringRequest{Name: "Ana", Status: "negotiation"})
	require.NoError(t, err)
	assert.Equal(t, 72, out.Score)
	assert.Equal(t, "hot", out.Temperature)
	assert.Equal(t, "Llamar hoy", out.NextAction)
}

func TestAnthropicService_SinAPIKey(t *testing.T) {
	_, err := NewAnthropicService("", "modelo").ScoreLead(context.Background(), dto.LeadScoringRequest{})
	assert.Error(t, err)
}
