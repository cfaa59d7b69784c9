package yamlutil

import (
	"errors"
	"strings"
	"testing"
)

type item struct {
	Name     string `yaml:"name"`
	Quantity string `yaml:"quantity"`
}

type doc struct {
	Customer string `yaml:"customer"`
	Items    []item `yaml:"items"`
}

// ---------------------------------------------------------------------------
// TestUnmarshalStrict - Single document decoding
// ---------------------------------------------------------------------------

func TestUnmarshalStrict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		want    doc
		wantErr error
		anyErr  bool
	}{
		{
			name: "valid document",
			data: "customer: 山田商店\nitems:\n  - name: 杉板\n    quantity: \"3\"\n",
			want: doc{Customer: "山田商店", Items: []item{{Name: "杉板", Quantity: "3"}}},
		},
		{
			name:   "unknown field rejected",
			data:   "customer: a\ncolor: red\n",
			anyErr: true,
		},
		{
			name:   "syntax error",
			data:   "customer: [unclosed",
			anyErr: true,
		},
		{
			name:    "empty input",
			data:    "",
			wantErr: ErrNilData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got doc
			err := UnmarshalStrict([]byte(tt.data), &got)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("UnmarshalStrict() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if tt.anyErr {
				if err == nil {
					t.Fatal("UnmarshalStrict() expected error, got nil")
				}
				if !strings.HasPrefix(err.Error(), "yamlutil:") {
					t.Errorf("error %q missing yamlutil prefix", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("UnmarshalStrict() unexpected error: %v", err)
			}
			if got.Customer != tt.want.Customer || len(got.Items) != len(tt.want.Items) {
				t.Fatalf("UnmarshalStrict() = %+v, want %+v", got, tt.want)
			}
			for i := range got.Items {
				if got.Items[i] != tt.want.Items[i] {
					t.Errorf("Items[%d] = %+v, want %+v", i, got.Items[i], tt.want.Items[i])
				}
			}
		})
	}

	t.Run("nil destination", func(t *testing.T) {
		t.Parallel()

		if err := UnmarshalStrict([]byte("a: 1"), nil); !errors.Is(err, ErrNilDestination) {
			t.Errorf("error = %v, want ErrNilDestination", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestUnmarshalStrictAll - Multi-document streams
// ---------------------------------------------------------------------------

func TestUnmarshalStrictAll(t *testing.T) {
	t.Parallel()

	t.Run("several documents", func(t *testing.T) {
		t.Parallel()

		data := "customer: A\n---\ncustomer: B\n---\ncustomer: C\n"
		docs, err := UnmarshalStrictAll[doc]([]byte(data))
		if err != nil {
			t.Fatalf("UnmarshalStrictAll() error: %v", err)
		}
		if len(docs) != 3 {
			t.Fatalf("got %d documents, want 3", len(docs))
		}
		for i, want := range []string{"A", "B", "C"} {
			if docs[i].Customer != want {
				t.Errorf("docs[%d].Customer = %q, want %q", i, docs[i].Customer, want)
			}
		}
	})

	t.Run("single document without separator", func(t *testing.T) {
		t.Parallel()

		docs, err := UnmarshalStrictAll[doc]([]byte("customer: A\n"))
		if err != nil || len(docs) != 1 {
			t.Fatalf("UnmarshalStrictAll() = %d docs, %v", len(docs), err)
		}
	})

	t.Run("unknown field names the document", func(t *testing.T) {
		t.Parallel()

		_, err := UnmarshalStrictAll[doc]([]byte("customer: A\n---\nbogus: 1\n"))
		if err == nil || !strings.Contains(err.Error(), "document 2") {
			t.Errorf("error = %v, want mention of document 2", err)
		}
	})

	t.Run("only comments", func(t *testing.T) {
		t.Parallel()

		if _, err := UnmarshalStrictAll[doc]([]byte("# nothing here\n")); !errors.Is(err, ErrNoDocuments) {
			t.Errorf("error = %v, want ErrNoDocuments", err)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()

		if _, err := UnmarshalStrictAll[doc](nil); !errors.Is(err, ErrNilData) {
			t.Errorf("error = %v, want ErrNilData", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestMarshal - Encoding
// ---------------------------------------------------------------------------

func TestMarshal(t *testing.T) {
	t.Parallel()

	out, err := Marshal(doc{Customer: "山田商店", Items: []item{{Name: "杉板", Quantity: "3"}}})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var back doc
	if err := UnmarshalStrict(out, &back); err != nil {
		t.Fatalf("UnmarshalStrict(Marshal()) error: %v", err)
	}
	if back.Customer != "山田商店" || len(back.Items) != 1 || back.Items[0].Name != "杉板" {
		t.Errorf("decoded %+v from %q", back, out)
	}
}

// ---------------------------------------------------------------------------
// TestInputSizeLimit - MaxInputSize enforcement
// ---------------------------------------------------------------------------

func TestInputSizeLimit(t *testing.T) {
	t.Parallel()

	big := []byte("customer: \"" + strings.Repeat("x", MaxInputSize) + "\"\n")

	if err := UnmarshalStrict(big, &doc{}); !errors.Is(err, ErrInputTooLarge) {
		t.Errorf("UnmarshalStrict() error = %v, want ErrInputTooLarge", err)
	}
	if _, err := UnmarshalStrictAll[doc](big); !errors.Is(err, ErrInputTooLarge) {
		t.Errorf("UnmarshalStrictAll() error = %v, want ErrInputTooLarge", err)
	}
}

// ---------------------------------------------------------------------------
// TestScalar - Numbers and strings decode to the same text
// ---------------------------------------------------------------------------

func TestScalar(t *testing.T) {
	t.Parallel()

	type row struct {
		Quantity Scalar `yaml:"quantity"`
	}

	tests := []struct {
		name string
		data string
		want Scalar
	}{
		{"integer", "quantity: 3\n", "3"},
		{"decimal", "quantity: 2.5\n", "2.5"},
		{"quoted", "quantity: \"3\"\n", "3"},
		{"free text", "quantity: 3枚\n", "3枚"},
		{"grouped digits", "quantity: 1,200\n", "1,200"},
		{"date stays text", "quantity: 2024-04-30\n", "2024-04-30"},
		{"single quoted", "quantity: '007'\n", "007"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got row
			if err := UnmarshalStrict([]byte(tt.data), &got); err != nil {
				t.Fatalf("UnmarshalStrict() error: %v", err)
			}
			if got.Quantity != tt.want {
				t.Errorf("Quantity = %q, want %q", got.Quantity, tt.want)
			}
		})
	}
}
