package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestParticipantKeyForIsOrderIndependent(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	c := uuid.New()

	forward := ParticipantKeyFor([]uuid.UUID{a, b, c})
	reversed := ParticipantKeyFor([]uuid.UUID{c, b, a})
	if forward != reversed {
		t.Fatalf("key must not depend on order: %q vs %q", forward, reversed)
	}
	if len(strings.Split(forward, ":")) != 3 {
		t.Fatalf("expected 3 key segments, got %q", forward)
	}
}

func TestParticipantKeyForDistinguishesSets(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	c := uuid.New()

	pair := ParticipantKeyFor([]uuid.UUID{a, b})
	triple := ParticipantKeyFor([]uuid.UUID{a, b, c})
	if pair == triple {
		t.Fatal("distinct participant sets must produce distinct keys")
	}
}
