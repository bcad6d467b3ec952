package httpadapter

import (
	"encoding/json"
	"fmt"
	"net/http"

	"vpatgen/internal/domain"
)

// streamEvents frames every batch event as `data: <JSON>\n\n` and flushes per
// frame so consumers see progress as it happens. The channel closing ends the
// response.
func streamEvents(w http.ResponseWriter, events <-chan domain.BatchEvent) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, _ := w.(http.Flusher)

	for ev := range events {
		b, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", b)
		if flusher != nil {
			flusher.Flush()
		}
	}
}
