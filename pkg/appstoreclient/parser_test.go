package appstoreclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleReport = "Provider\tProvider Country\tSKU\tDeveloper\tTitle\tVersion\tProduct Type Identifier\tUnits\n" +
	"APPLE\tUS\tcom.example.app\tExample Dev\tExample App\t1.2.0\t1\t42\n" +
	"APPLE\tUS\tcom.example.app\tExample Dev\tExample App\t1.2.0\t1F\t8\n"

func TestParseUnitsTotal_SumsUnitsColumn(t *testing.T) {
	total, err := ParseUnitsTotal(sampleReport)
	require.NoError(t, err)
	assert.Equal(t, 50, total)
}

func TestParseUnitsTotal(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    int
		wantErr error
	}{
		{
			name: "case insensitive header fallback",
			text: "SKU\tunits\napp\t3\napp\t4\n",
			want: 7,
		},
		{
			name: "exact match wins over case insensitive candidate",
			text: "units\tUnits\n5\t7\n",
			want: 7,
		},
		{
			name: "short rows are skipped",
			text: "SKU\tCountry\tUnits\napp\tUS\t10\napp\n",
			want: 10,
		},
		{
			name: "blank units cells are skipped",
			text: "SKU\tUnits\napp\t\napp\t6\n",
			want: 6,
		},
		{
			name: "non numeric units cells are skipped",
			text: "SKU\tUnits\napp\tN/A\napp\t6\n",
			want: 6,
		},
		{
			name: "zero total when every row is skipped",
			text: "SKU\tUnits\napp\tbad\napp\n",
			want: 0,
		},
		{
			name: "zero total with no data rows at all",
			text: "SKU\tUnits\n",
			want: 0,
		},
		{
			name: "blank lines are ignored",
			text: "\nSKU\tUnits\n\napp\t5\n\n",
			want: 5,
		},
		{
			name: "windows line endings",
			text: "SKU\tUnits\r\napp\t5\r\napp\t6\r\n",
			want: 11,
		},
		{
			name: "surrounding whitespace in cells is tolerated",
			text: "SKU\tUnits\napp\t 12 \n",
			want: 12,
		},
		{
			name:    "missing units column",
			text:    "SKU\tCountry\napp\tUS\n",
			wantErr: ErrUnitsColumnMissing,
		},
		{
			name:    "empty report",
			text:    "",
			wantErr: ErrEmptyReport,
		},
		{
			name:    "whitespace only report",
			text:    "\n  \n\t\n",
			wantErr: ErrEmptyReport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total, err := ParseUnitsTotal(tt.text)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, total)
		})
	}
}

func TestParseUnitsTotal_Deterministic(t *testing.T) {
	first, err := ParseUnitsTotal(sampleReport)
	require.NoError(t, err)
	second, err := ParseUnitsTotal(sampleReport)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
