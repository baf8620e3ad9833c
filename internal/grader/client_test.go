package grader

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestPayloadValidate(t *testing.T) {
	valid := Payload{
		Completeness: f(90), Accuracy: f(85), Effort: f(88),
		OverallScore: f(87), Feedback: "ok",
	}

	cases := []struct {
		name    string
		mutate  func(p *Payload)
		wantErr string
	}{
		{"valid", func(p *Payload) {}, ""},
		{"zero scores pass", func(p *Payload) {
			p.Completeness, p.Accuracy, p.Effort, p.OverallScore = f(0), f(0), f(0), f(0)
		}, ""},
		{"missing overall", func(p *Payload) { p.OverallScore = nil }, "missing overall_score"},
		{"missing accuracy", func(p *Payload) { p.Accuracy = nil }, "missing accuracy"},
		{"NaN", func(p *Payload) { p.Effort = f(math.NaN()) }, "non-finite effort"},
		{"infinite", func(p *Payload) { p.Completeness = f(math.Inf(1)) }, "non-finite completeness"},
		{"negative", func(p *Payload) { p.OverallScore = f(-1) }, "out of range"},
		{"above 100", func(p *Payload) { p.Accuracy = f(100.5) }, "out of range"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := valid
			tc.mutate(&p)
			res, err := p.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				require.NotNil(t, res)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
			assert.Nil(t, res)
		})
	}
}

func TestGradeSkipMode(t *testing.T) {
	c := New("http://unreachable.invalid", "", true)
	res, err := c.Grade(context.Background(), "sub-1", nil)
	require.NoError(t, err)
	assert.Equal(t, 81.0, res.OverallScore)
}

func TestGradePostsImagesAndValidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/grade", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var body struct {
			SubmissionID string   `json:"submission_id"`
			Images       []string `json:"images"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "sub-1", body.SubmissionID)
		assert.Len(t, body.Images, 2)

		json.NewEncoder(w).Encode(Payload{
			Completeness: f(92), Accuracy: f(88), Effort: f(95),
			OverallScore: f(91), Feedback: "nice work",
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "secret", false)
	res, err := c.Grade(context.Background(), "sub-1", [][]byte{[]byte("a"), []byte("b")})
	require.NoError(t, err)
	assert.Equal(t, 91.0, res.OverallScore)
	assert.Equal(t, "nice work", res.Feedback)
}

func TestGradeRejectsInvalidPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// overall_score absent: must not default to zero
		json.NewEncoder(w).Encode(Payload{
			Completeness: f(92), Accuracy: f(88), Effort: f(95),
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "", false)
	_, err := c.Grade(context.Background(), "sub-1", [][]byte{[]byte("a")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing overall_score")
}

func TestGradeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(srv.URL, "", false)
	_, err := c.Grade(context.Background(), "sub-1", [][]byte{[]byte("a")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overloaded")
}
