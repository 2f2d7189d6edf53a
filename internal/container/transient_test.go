// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestIsTransientError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"context canceled", context.Canceled, false},
		{"deadline exceeded", context.DeadlineExceeded, false},
		{"wrapped context canceled", fmt.Errorf("pull failed: %w", context.Canceled), false},
		{"dns failure", errors.New("Could not resolve host: docker.io"), true},
		{"temporary resolver failure", errors.New("Temporary failure resolving 'docker.io'"), true},
		{"no such host", errors.New("dial tcp: lookup registry-1.docker.io: no such host"), true},
		{"connection refused", errors.New("connection refused"), true},
		{"connection timed out", errors.New("connection timed out"), true},
		{"io timeout", errors.New("read tcp: i/o timeout"), true},
		{"registry 5xx", errors.New("received unexpected HTTP status: 503 Service Unavailable"), true},
		{"overlay mount race", errors.New("error creating overlay mount to /merged"), true},
		{"layer mount race", errors.New("error mounting layer abc"), true},
		{"manifest unknown", errors.New("manifest unknown: image not found"), false},
		{"unauthorized", errors.New("unauthorized: authentication required"), false},
		{"generic failure", errors.New("something else"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsTransientError(tt.err); got != tt.want {
				t.Errorf("IsTransientError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
