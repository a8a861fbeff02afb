// External oracle provider: asks a chat model for the city's orders.
package decision

import (
	"context"
	"fmt"
	"log/slog"
)

// Completer sends a prompt to a chat model and returns its text reply.
type Completer interface {
	Complete(ctx context.Context, system, userPrompt string, maxTokens int) (string, error)
}

const oracleSystemPrompt = `Sei il consigliere di una città in un gioco di strategia a turni su una mappa 10x10.
Ogni turno scegli un'azione per la città e una per la sua unità.

Rispondi SOLO con un oggetto JSON:
{"city": "produzione" | "popolazione" | "edificio" | null, "unit": "avanza" | "difendi" | null}

- "produzione": spendi 200 oro per +1 produzione.
- "popolazione": spendi 500 cibo per +50 popolazione.
- "edificio": costruisci un edificio non ancora posseduto.
- "avanza": l'unità si muove di un passo verso la città nemica.
- "difendi": l'unità torna di un passo verso la propria città.
Due unità sulla stessa casella si eliminano a vicenda.`

// Oracle asks a chat model for each decision.
type Oracle struct {
	Client    Completer
	MaxTokens int
}

// NewOracle creates an oracle provider over the given client.
func NewOracle(client Completer) *Oracle {
	return &Oracle{Client: client, MaxTokens: 100}
}

// Decide formats the snapshot as a prompt and parses the reply. Transport
// errors, cancellation and malformed replies all wrap ErrParse.
func (o *Oracle) Decide(ctx context.Context, snap Snapshot) (Decision, error) {
	prompt := snap.Text() + "\nQuale azione scegli? Rispondi con un singolo oggetto JSON."

	resp, err := o.Client.Complete(ctx, oracleSystemPrompt, prompt, o.MaxTokens)
	if err != nil {
		return Decision{}, fmt.Errorf("%w: oracle call: %v", ErrParse, err)
	}

	slog.Debug("oracle response", "city", snap.CityName, "turn", snap.Turn, "raw", resp)
	return ParseResponse(resp)
}
