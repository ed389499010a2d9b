package firestore

import (
	"errors"
	"testing"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/emberhq/ember/pkg/core"
)

func TestNativeUpdatesLowerTransforms(t *testing.T) {
	native, err := nativeUpdates([]core.Update{
		{FieldPath: "price", Value: 12.5},
		{FieldPath: "stock", Value: core.Increment(3)},
		{FieldPath: "tags", Value: core.ArrayUnion("usb")},
		{FieldPath: "tags", Value: core.ArrayRemove("legacy")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(native) != 4 {
		t.Fatalf("got %d updates, want 4", len(native))
	}
	if native[0].Path != "price" || native[0].Value != 12.5 {
		t.Errorf("plain value: %+v", native[0])
	}
	// Transform markers become the client's server-side sentinels rather
	// than being written as literal values.
	for i, update := range native[1:] {
		if _, plain := update.Value.(core.Transform); plain {
			t.Errorf("update %d kept the domain transform marker", i+1)
		}
	}
}

func TestNativeOperatorMapping(t *testing.T) {
	cases := map[core.Operator]string{
		core.OpEqual:       "==",
		core.OpNotEqual:    "!=",
		core.OpGreater:     ">",
		core.OpGreaterEq:   ">=",
		core.OpLess:        "<",
		core.OpLessEq:      "<=",
		core.OpIn:          "in",
		core.OpNotIn:       "not-in",
		core.OpContains:    "array-contains",
		core.OpContainsAny: "array-contains-any",
	}
	for op, want := range cases {
		got, err := nativeOperator(op)
		if err != nil {
			t.Errorf("%s: %v", op, err)
			continue
		}
		if got != want {
			t.Errorf("%s = %q, want %q", op, got, want)
		}
	}

	// startswith never reaches nativeOperator; it is lowered to a range
	// pair in buildQuery.
	if _, err := nativeOperator(core.OpStartsWith); err == nil {
		t.Error("startswith accepted as a native operator")
	}
}

func TestMapError(t *testing.T) {
	if mapError(nil, "products", "p1") != nil {
		t.Error("nil error mapped to non-nil")
	}

	notFound := status.Error(codes.NotFound, "document missing")
	err := mapError(notFound, "products", "p1")
	var dne *core.DoesNotExist
	if !errors.As(err, &dne) {
		t.Fatalf("got %v, want DoesNotExist", err)
	}
	if dne.Collection != "products" || dne.ID != "p1" {
		t.Errorf("error fields = %+v", dne)
	}

	denied := status.Error(codes.PermissionDenied, "no access")
	if got := mapError(denied, "products", "p1"); got != denied {
		t.Errorf("non-NotFound error rewritten: %v", got)
	}
}

func TestPrefixSuccessor(t *testing.T) {
	cases := []struct {
		prefix string
		want   string
	}{
		{"Mouse", "Mousf"},
		{"a\uFFFF", "a\U00010000"},   // ordinary increment past the BMP
		{"\uD7FF", "\uE000"},         // increment skips the surrogate range
		{"a\U0010FFFF", "b"},         // last rune maxed, carry to the previous one
		{"\U0010FFFF\U0010FFFF", ""}, // nothing orders above the prefix
		{"", ""},
	}
	for _, c := range cases {
		if got := prefixSuccessor(c.prefix); got != c.want {
			t.Errorf("prefixSuccessor(%q) = %q, want %q", c.prefix, got, c.want)
		}
	}
}

func TestBuildQueryRejectsCursorWithoutOrdering(t *testing.T) {
	s := &Store{client: &firestore.Client{}}
	_, err := s.buildQuery(core.QuerySpec{Collection: "products", StartAfter: []any{10}})
	var validationErr *core.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
}
