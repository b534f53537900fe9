package gcs

import "testing"

func TestObjectURL(t *testing.T) {
	got := objectURL("https://storage.googleapis.com", "portal-assets", "clients/c1/logos/id-1-Mark Final.svg")
	want := "https://storage.googleapis.com/portal-assets/clients/c1/logos/id-1-Mark%20Final.svg"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
