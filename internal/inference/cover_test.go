package inference

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbePeriod(t *testing.T) {
	tests := []struct {
		name string
		text string
		want time.Time
		ok   bool
	}{
		{
			name: "quarterly period",
			text: "Quarterly Report for the quarterly period ended March 30, 2024 pursuant to Section 13",
			want: time.Date(2024, 3, 30, 0, 0, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "fiscal quarter",
			text: "For the fiscal quarter ended June 29, 2024",
			want: time.Date(2024, 6, 29, 0, 0, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "three months",
			text: "for the three months ended September 30, 2023",
			want: time.Date(2023, 9, 30, 0, 0, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "thirteen weeks",
			text: "For the thirteen weeks ended April 1, 2023",
			want: time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "colon separator",
			text: "for the quarterly period ended: 2024-03-30",
			want: time.Date(2024, 3, 30, 0, 0, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "no cover assertion",
			text: "Annual revenue increased during the year.",
			ok:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ProbePeriod(tt.text)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParsePeriodHeader(t *testing.T) {
	txt := `<SEC-HEADER>
CONFORMED SUBMISSION TYPE:	10-Q
CONFORMED PERIOD OF REPORT:	20240330
FILED AS OF DATE:		20240503
</SEC-HEADER>`

	got, ok := ParsePeriodHeader(txt)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 30, 0, 0, 0, 0, time.UTC), got)

	_, ok = ParsePeriodHeader("no header here")
	assert.False(t, ok)
}
