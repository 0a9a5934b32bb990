// Package channels implements the concrete delivery channels. Every channel
// emits one observable line per send; channels with a configured transport
// additionally push the notification through it.
package channels

import (
	"fmt"
	"io"

	"github.com/clawinfra/herald/internal/types"
)

// emit writes the observable delivery line for a send.
func emit(w io.Writer, kind types.Kind, body string) {
	fmt.Fprintf(w, "Sending %s: %s\n", kind.Label(), body)
}
