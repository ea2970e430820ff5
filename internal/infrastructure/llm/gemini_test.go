package llm

import (
	"errors"
	"fmt"
	"testing"

	"google.golang.org/api/googleapi"

	"newsdigest/internal/domain"
)

func TestClassifyRateLimitErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		err     error
		limited bool
	}{
		{"googleapi 429", &googleapi.Error{Code: 429, Message: "rate limit"}, true},
		{"wrapped googleapi 429", fmt.Errorf("call: %w", &googleapi.Error{Code: 429}), true},
		{"429 in message", errors.New("rpc error: code 429 exceeded"), true},
		{"quota in message", errors.New("Quota exceeded for requests"), true},
		{"googleapi 500", &googleapi.Error{Code: 500, Message: "server error"}, false},
		{"unrelated", errors.New("connection refused"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := classify(tc.err)
			if errors.Is(got, domain.ErrRateLimited) != tc.limited {
				t.Fatalf("classify(%v): limited=%v, want %v", tc.err, !tc.limited, tc.limited)
			}
		})
	}
}
