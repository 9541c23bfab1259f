package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestFindCmd_PrintsResults(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"opportunities":[{"id":"1","title":"Moot court","applyUrl":"https://moot.example","tags":["LAW","FRESHMEN"]}]}`))
	}))
	defer srv.Close()

	out, err := run(t, findCmd(), "--api", srv.URL, "-i", "law", "-g", "9", "--pages", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "1. Moot court [LAW, FRESHMEN]")
	assert.Contains(t, out, "https://moot.example")
	assert.Contains(t, out, "-- no more results --")
}

func TestFindCmd_RejectedFilters(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Invalid interest."}`))
	}))
	defer srv.Close()

	_, err := run(t, findCmd(), "--api", srv.URL, "-i", "LAW", "-g", "9")
	assert.EqualError(t, err, "filters rejected: Invalid interest.")
}

func TestFindCmd_LocalValidation(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	_, err := run(t, findCmd(), "--api", "http://127.0.0.1:1", "-i", "cs", "-g", "9")
	assert.EqualError(t, err, "Invalid interest.")
}

func TestContactCmd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/contact", r.URL.Path)
		_, _ = w.Write([]byte(`{"message":"Contact information saved successfully"}`))
	}))
	defer srv.Close()

	out, err := run(t, contactCmd(), "--api", srv.URL, "--name", "Ada", "--email", "ada@example.com", "-m", "hello")
	require.NoError(t, err)
	assert.Equal(t, "message sent\n", out)
}

func TestContactCmd_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Invalid email address"}`))
	}))
	defer srv.Close()

	_, err := run(t, contactCmd(), "--api", srv.URL, "--name", "Ada", "--email", "nope", "-m", "hello")
	assert.EqualError(t, err, "message rejected: Invalid email address")
}

func TestContactCmd_ServerErrorPassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Error saving contact information"}`))
	}))
	defer srv.Close()

	_, err := run(t, contactCmd(), "--api", srv.URL, "--name", "Ada", "--email", "ada@example.com", "-m", "hello")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "message rejected")
}
