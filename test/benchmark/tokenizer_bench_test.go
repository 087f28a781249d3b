package benchmark

import (
	"strings"
	"testing"

	"github.com/onslaught7/RAG-Systems-BootDev/internal/tokenizer"
)

var sampleTexts = map[string]string{
	"short": "A hacker discovers reality is a simulation",
	"medium": `A veteran detective pursues a disciplined crew of bank robbers
        across Los Angeles. As the crew plans one last heist, the detective's
        obsession with the case destroys what remains of his personal life,
        and the two men circle each other toward an inevitable confrontation
        at the airport.`,
	"long": strings.Repeat(`A linguist races to translate an alien language
        before global tensions boil over. Working beside a physicist at a
        remote military camp, she slowly deciphers the circular symbols the
        visitors project, and the structure of their language begins to
        reshape how she experiences time itself. `, 20),
}

func BenchmarkNormalize(b *testing.B) {
	norm := tokenizer.New("")
	for name, text := range sampleTexts {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				tokens := norm.Normalize(text)
				_ = tokens
			}
		})
	}
}

func BenchmarkNormalizeParallel(b *testing.B) {
	norm := tokenizer.New("")
	text := sampleTexts["medium"]
	// Warm the stop-word cache outside the timed region.
	norm.Normalize("warmup")
	b.ReportAllocs()
	b.SetBytes(int64(len(text)))
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			tokens := norm.Normalize(text)
			_ = tokens
		}
	})
}
