package ai

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jhoicas/seguros-api/internal/application/dto"
)

// scoringSystemPrompt define el rol del modelo y el formato de salida.
const scoringSystemPrompt = `Eres un analista comercial de una corredora de seguros en Colombia.
Dado un lead (prospecto) devuelve ÚNICAMENTE un objeto JSON (sin markdown ni texto adicional) con esta estructura exacta:
{
  "score": <entero entre 0 y 100: probabilidad de cierre>,
  "temperature": "<hot | warm | cold>",
  "next_action": "<siguiente acción concreta para el vendedor, máximo 120 caracteres>",
  "reasoning": "<explicación concisa en español, máximo 200 caracteres>"
}

Reglas:
- score: 70–100 = hot, 40–69 = warm, 0–39 = cold.
- Considera la etapa del funil, el origen del lead, el valor estimado y las notas.
- No incluyas texto fuera del JSON.`

// llmScorePayload es el JSON que esperamos recibir del modelo.
type llmScorePayload struct {
	Score       float64 `json:"score"`
	Temperature string  `json:"temperature"`
	NextAction  string  `json:"next_action"`
	Reasoning   string  `json:"reasoning"`
}

// jsonBlockRe extrae el primer objeto JSON del texto aunque venga envuelto en markdown.
var jsonBlockRe = regexp.MustCompile(`(?s)\{.*\}`)

func scoringUserContent(in dto.LeadScoringRequest) string {
	return fmt.Sprintf(
		"Nombre: %s\nOrigen: %s\nEtapa: %s\nProducto de interés: %s\nValor estimado: %s\nNotas: %s",
		in.Name, in.Source, in.Status, in.ProductName, in.EstimatedValue.StringFixed(0), in.Notes,
	)
}

// toScoreDTO acota el puntaje a [0,100]. La temperatura siempre se deriva del
// puntaje; la del modelo se ignora.
func toScoreDTO(p llmScorePayload) *dto.LeadScoreDTO {
	score := int(p.Score + 0.5)
	if score < 0 {
		score = 0
	} else if score > 100 {
		score = 100
	}
	return &dto.LeadScoreDTO{
		Score:       score,
		Temperature: TemperatureFor(score),
		NextAction:  p.NextAction,
		Reasoning:   p.Reasoning,
	}
}

// TemperatureFor clasifica un puntaje 0–100.
func TemperatureFor(score int) string {
	switch {
	case score >= 70:
		return "hot"
	case score >= 40:
		return "warm"
	default:
		return "cold"
	}
}

// extractJSON extrae el primer objeto JSON bien formado de un texto libre.
// Estrategia en dos pasos:
//  1. Eliminar bloques de código markdown (```json … ``` o ``` … ```).
//  2. Usar regex para capturar el primer bloque { … }.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.Index(text, "```"); idx != -1 {
		after := text[idx+3:]
		if nl := strings.Index(after, "\n"); nl != -1 {
			after = after[nl+1:]
		}
		if end := strings.LastIndex(after, "```"); end != -1 {
			after = after[:end]
		}
		text = strings.TrimSpace(after)
	}
	if strings.HasPrefix(text, "{") {
		return text
	}
	return strings.TrimSpace(jsonBlockRe.FindString(text))
}
