package service

import (
	"testing"

	"legalintake_backend/internal/calllogs/repository"
)

func TestIsComplete(t *testing.T) {
	longSummary := "Client called about a car accident on Main St yesterday"
	longTranscript := "operator: hello how can I help\nclient: hi I was in an accident on Main St"
	shortSummary := "ok"
	shortTranscript := "hi"
	failed := "failed"
	errStatus := "error"
	completed := "completed"
	inactivity := "inactivity timeout"
	spanish := "sin respuesta del cliente"

	cases := []struct {
		name string
		log  repository.CallLog
		want bool
	}{
		{
			name: "failed status is incomplete",
			log: repository.CallLog{
				Status:     &failed,
				Summary:    &longSummary,
				Transcript: &longTranscript,
			},
			want: false,
		},
		{
			name: "error status is incomplete",
			log: repository.CallLog{
				Status:     &errStatus,
				Summary:    &longSummary,
				Transcript: &longTranscript,
			},
			want: false,
		},
		{
			name: "successful call with substantive content is complete",
			log: repository.CallLog{
				Status:     &completed,
				Summary:    &longSummary,
				Transcript: &longTranscript,
				Analysis:   map[string]any{"call_successful": true},
			},
			want: true,
		},
		{
			name: "content below length thresholds is incomplete",
			log: repository.CallLog{
				Summary:    &shortSummary,
				Transcript: &shortTranscript,
			},
			want: false,
		},
		{
			name: "inactivity keyword wins over long content",
			log: repository.CallLog{
				DisconnectReason: &inactivity,
				Summary:          &longSummary,
				Transcript:       &longTranscript,
			},
			want: false,
		},
		{
			name: "spanish no-answer keyword in summary",
			log: repository.CallLog{
				Summary:    &spanish,
				Transcript: &longTranscript,
			},
			want: false,
		},
		{
			name: "explicit call_successful false is incomplete",
			log: repository.CallLog{
				Summary:    &longSummary,
				Transcript: &longTranscript,
				Analysis:   map[string]any{"call_successful": false},
			},
			want: false,
		},
		{
			name: "missing transcript is incomplete even when successful",
			log: repository.CallLog{
				Summary:  &longSummary,
				Analysis: map[string]any{"call_successful": true},
			},
			want: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsComplete(tc.log); got != tc.want {
				t.Fatalf("IsComplete = %v, want %v", got, tc.want)
			}
		})
	}
}
