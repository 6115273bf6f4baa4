package dashboard

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/n1techn1t-bit/IQFM-kontent/internal/models"
	"github.com/n1techn1t-bit/IQFM-kontent/internal/order"
)

// snapshotEvent carries one variant's full lane-partitioned state.
// Clients re-render from it rather than patching; the stream coalesces
// bursts so only the latest state matters.
type snapshotEvent struct {
	Variant string                   `json:"variant"`
	Lanes   map[string][]models.Item `json:"lanes"`
}

// handleEvents streams board snapshots for one variant as SSE. The
// first event is the current state; subsequent events follow every
// store write to that variant.
func (a *api) handleEvents(c *gin.Context) {
	variant := c.Param("variant")
	if !models.ValidVariant(variant) {
		c.JSON(400, gin.H{"error": "unknown variant: " + variant})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	sub, err := a.store.Subscribe(variant)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	defer sub.Unsubscribe()

	writeSSE(c.Writer, "connected", map[string]string{"variant": variant})
	c.Writer.Flush()

	ctx := c.Request.Context()
	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			writeSSE(c.Writer, "heartbeat", map[string]string{
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
			c.Writer.Flush()
		case items, ok := <-sub.Items():
			if !ok {
				return
			}
			writeSSE(c.Writer, "snapshot", snapshotEvent{
				Variant: variant,
				Lanes:   order.Partition(items),
			})
			c.Writer.Flush()
		}
	}
}

// writeSSE writes a single SSE event to the writer.
func writeSSE(w io.Writer, event string, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, string(jsonData))
}
