package todo

import (
	"fmt"
	"testing"
)

func largeCollection(n int) Collection {
	c := make(Collection, 0, n)
	for i := 1; i <= n; i++ {
		cat := CategoryPersonal
		if i%2 == 0 {
			cat = CategoryWork
		}
		c = append(c, Task{
			ID:        int64(1718000000000 + i),
			Text:      fmt.Sprintf("Task %d", i),
			Category:  cat,
			Completed: i%3 == 0,
		})
	}
	return c
}

// BenchmarkDecode benchmarks payload parsing and validation.
func BenchmarkDecode(b *testing.B) {
	data, err := Encode(largeCollection(100))
	if err != nil {
		b.Fatalf("Encode failed: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Decode(data); err != nil {
			b.Fatalf("Decode failed: %v", err)
		}
	}
}

// BenchmarkEncode benchmarks payload serialization.
func BenchmarkEncode(b *testing.B) {
	c := largeCollection(100)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Encode(c); err != nil {
			b.Fatalf("Encode failed: %v", err)
		}
	}
}

// BenchmarkToggle benchmarks copy-on-write updates.
func BenchmarkToggle(b *testing.B) {
	c := largeCollection(100)
	id := c[50].ID

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c, _ = c.Toggle(id)
	}
}
