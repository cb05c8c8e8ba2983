package validate

import (
	"strings"
	"testing"

	"github.com/ppiankov/icscheck/internal/model"
)

func BenchmarkValidateSmall(b *testing.B) {
	text := canonical(nil)
	opts := DefaultOptions()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Validate(text, opts)
	}
}

func BenchmarkValidateLargeLayers(b *testing.B) {
	para := "The service exposes order totals through a read-only view refreshed hourly. "
	text := canonical(map[model.LayerName]string{
		model.LayerImmutableContext: strings.Repeat(para, 500),
		model.LayerTaskPayload:      strings.Repeat("Summarize the weekly revenue trend per region. ", 500),
	})
	opts := DefaultOptions()
	b.SetBytes(int64(len(text)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Validate(text, opts)
	}
}
