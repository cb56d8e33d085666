package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{
			name: "plain key",
			key:  "alert-types",
			want: "alert-types",
		},
		{
			name: "url key",
			key:  "https://api2.tigoenergy.com/api/v3",
			want: "https_api2.tigoenergy.com_api_v3",
		},
		{
			name: "consecutive dots collapse",
			key:  "system..1234",
			want: "system.1234",
		},
		{
			name: "spaces become underscores",
			key:  "system 1234",
			want: "system_1234",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeKey(tt.key)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("normalizeKey(%q) mismatch (-want +got):\n%s", tt.key, diff)
			}
		})
	}
}

func TestGetOrSet(t *testing.T) {
	c := New[string]("test")
	if err := c.SetDir(t.TempDir()); err != nil {
		t.Fatal(err)
	}

	calls := 0
	fetch := func() (string, error) {
		calls++
		return "value", nil
	}

	got, err := c.GetOrSet("key", fetch, false)
	if err != nil {
		t.Fatal(err)
	}
	if got != "value" {
		t.Errorf("got %q, want %q", got, "value")
	}
	if calls != 1 {
		t.Errorf("fetch called %d times, want 1", calls)
	}

	// Second read must come from cache
	got, err = c.GetOrSet("key", fetch, false)
	if err != nil {
		t.Fatal(err)
	}
	if got != "value" {
		t.Errorf("got %q, want %q", got, "value")
	}
	if calls != 1 {
		t.Errorf("fetch called %d times, want 1", calls)
	}

	// forceUpdate bypasses the cached entry
	_, err = c.GetOrSet("key", fetch, true)
	if err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("fetch called %d times, want 2", calls)
	}
}

func TestGetOrSetExpiry(t *testing.T) {
	c := New[int]("test")
	if err := c.SetDir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	c.SetTTL(time.Nanosecond)

	calls := 0
	fetch := func() (int, error) {
		calls++
		return calls, nil
	}

	if _, err := c.GetOrSet("key", fetch, false); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)

	got, err := c.GetOrSet("key", fetch, false)
	if err != nil {
		t.Fatal(err)
	}
	if got != 2 {
		t.Errorf("got %d, want refetched value 2", got)
	}
}

func TestGetOrSetError(t *testing.T) {
	c := New[string]("test")
	if err := c.SetDir(t.TempDir()); err != nil {
		t.Fatal(err)
	}

	wantErr := errors.New("fetch failed")
	_, err := c.GetOrSet("key", func() (string, error) {
		return "", wantErr
	}, false)
	if !errors.Is(err, wantErr) {
		t.Errorf("got error %v, want %v", err, wantErr)
	}

	// A failed fetch must not poison the cache
	got, err := c.GetOrSet("key", func() (string, error) {
		return "recovered", nil
	}, false)
	if err != nil {
		t.Fatal(err)
	}
	if got != "recovered" {
		t.Errorf("got %q, want %q", got, "recovered")
	}
}
