package routegate

import (
	"context"
	"testing"

	"github.com/shopfront/routegate/session"
)

func BenchmarkEvaluateEdgePublic(b *testing.B) {
	engine, err := New().Build()
	if err != nil {
		b.Fatalf("build failed: %v", err)
	}
	defer engine.Close()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.EvaluateEdge(context.Background(), "/products", EdgeSignals{})
	}
}

func BenchmarkEvaluateEdgeAdminDenied(b *testing.B) {
	engine, err := New().Build()
	if err != nil {
		b.Fatalf("build failed: %v", err)
	}
	defer engine.Close()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.EvaluateEdge(context.Background(), "/admin/orders", EdgeSignals{})
	}
}

func BenchmarkEvaluateEdgeAuthenticated(b *testing.B) {
	engine, err := New().Build()
	if err != nil {
		b.Fatalf("build failed: %v", err)
	}
	defer engine.Close()

	sig := EdgeSignals{Token: "tok", RawUser: `{"id":"u1","role":"customer"}`}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.EvaluateEdge(context.Background(), "/orders", sig)
	}
}

func BenchmarkEvaluateClient(b *testing.B) {
	engine, err := New().Build()
	if err != nil {
		b.Fatalf("build failed: %v", err)
	}
	defer engine.Close()

	st := session.State{HasAnyToken: true, HasAnyAuthSignal: true}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.EvaluateClient(context.Background(), "/orders", st)
	}
}
