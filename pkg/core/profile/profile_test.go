package profile

import (
	"errors"
	"testing"
)

func TestResolve(t *testing.T) {
	r := NewRegistry("car", "bike")

	p, err := r.Resolve("bike")
	if err != nil || p.Name != "bike" {
		t.Fatalf("Resolve(bike) = %+v, %v", p, err)
	}

	if _, err := r.Resolve("horse"); !errors.Is(err, ErrUnknownProfile) {
		t.Fatalf("expected ErrUnknownProfile, got %v", err)
	}
}

func TestRegisterReplaces(t *testing.T) {
	r := NewRegistry()
	r.Register(Profile{Name: "car"})
	r.Register(Profile{Name: "car"})
	if _, err := r.Resolve("car"); err != nil {
		t.Fatal(err)
	}
}
