package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCareProtocol(t *testing.T) {
	const payload = `{
		"suspected_diagnosis": "Acute Coronary Syndrome",
		"transport_protocol": "monitor, oxygen, large-bore IV",
		"arrival_checklist": ["ECG on arrival", "troponin draw"],
		"medications_to_prepare": ["aspirin", "nitroglycerin"]
	}`

	t.Run("plain json", func(t *testing.T) {
		got, err := ParseCareProtocol(payload)
		require.NoError(t, err)
		assert.Equal(t, "Acute Coronary Syndrome", got.SuspectedDiagnosis)
		assert.Len(t, got.ArrivalChecklist, 2)
		assert.Len(t, got.MedicationsToPrepare, 2)
	})

	t.Run("json fenced in markdown", func(t *testing.T) {
		got, err := ParseCareProtocol("Here is the protocol:\n```json\n" + payload + "\n```\nStay safe.")
		require.NoError(t, err)
		assert.Equal(t, "Acute Coronary Syndrome", got.SuspectedDiagnosis)
	})

	t.Run("bare fences", func(t *testing.T) {
		got, err := ParseCareProtocol("```\n" + payload + "\n```")
		require.NoError(t, err)
		assert.Equal(t, "monitor, oxygen, large-bore IV", got.TransportProtocol)
	})

	t.Run("surrounding whitespace", func(t *testing.T) {
		got, err := ParseCareProtocol("\n\n  " + payload + "  \n")
		require.NoError(t, err)
		assert.NotNil(t, got)
	})

	t.Run("non json errors", func(t *testing.T) {
		_, err := ParseCareProtocol("I cannot help with that.")
		assert.Error(t, err)
	})
}
