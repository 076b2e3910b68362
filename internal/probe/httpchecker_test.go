package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPChecker_StatusOK(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		w.Write([]byte("ok"))
	}))
	defer s.Close()

	chk := NewHTTPChecker(2 * time.Second)
	out := chk.Check(context.Background(), s.URL)
	if !out.Reached {
		t.Fatalf("want reached, got %+v", out)
	}
	if out.StatusCode != 200 {
		t.Fatalf("want status 200, got %d", out.StatusCode)
	}
	if !IsUp(out) {
		t.Fatalf("200 should classify as up: %+v", out)
	}
	if out.Latency < 0 {
		t.Fatalf("latency should be >= 0, got %v", out.Latency)
	}
}

func TestHTTPChecker_Status500_IsReachedButDown(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", 500)
	}))
	defer s.Close()

	chk := NewHTTPChecker(2 * time.Second)
	out := chk.Check(context.Background(), s.URL)
	if !out.Reached {
		t.Fatalf("any HTTP response is a completed probe, got %+v", out)
	}
	if out.StatusCode != 500 {
		t.Fatalf("want status 500, got %d", out.StatusCode)
	}
	if IsUp(out) {
		t.Fatalf("500 must classify as down: %+v", out)
	}
}

func TestHTTPChecker_TimeoutSetsStatusZero(t *testing.T) {
	// Server sleeps longer than client timeout
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(200)
	}))
	defer s.Close()

	chk := NewHTTPChecker(50 * time.Millisecond)
	out := chk.Check(context.Background(), s.URL)
	if out.Reached {
		t.Fatalf("want unreached due to timeout, got %+v", out)
	}
	if out.StatusCode != 0 {
		t.Fatalf("want status 0 on timeout, got %d", out.StatusCode)
	}
	if out.Err == "" {
		t.Fatalf("want error message on timeout")
	}
}

func TestHTTPChecker_ConnectionRefused(t *testing.T) {
	// grab a port nobody is listening on
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	dead := s.URL
	s.Close()

	chk := NewHTTPChecker(time.Second)
	out := chk.Check(context.Background(), dead)
	if out.Reached || out.StatusCode != 0 || out.Err == "" {
		t.Fatalf("want unreached with error, got %+v", out)
	}
}

func TestIsUp_Boundaries(t *testing.T) {
	cases := []struct {
		status int
		want   bool
	}{
		{200, true},
		{204, true},
		{301, true},
		{399, true},
		{400, false},
		{404, false},
		{500, false},
	}
	for _, c := range cases {
		o := Outcome{Reached: true, StatusCode: c.status}
		if IsUp(o) != c.want {
			t.Fatalf("status %d: want up=%v", c.status, c.want)
		}
	}
	if IsUp(Outcome{Reached: false, StatusCode: 200}) {
		t.Fatal("unreached can never be up")
	}
}
