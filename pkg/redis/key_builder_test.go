package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyBuilder_EnvironmentPrefix(t *testing.T) {
	cases := []struct {
		environment string
		want        string
	}{
		{"production", "prod"},
		{"development", "staging"},
		{"staging", "staging"},
		{"test", "staging"},
		{"", "prod"},
	}

	for _, tc := range cases {
		kb := NewKeyBuilder(tc.environment)
		assert.Equal(t, tc.want, kb.Prefix(), "environment %q", tc.environment)
	}
}

func TestKeyBuilder_Keys(t *testing.T) {
	kb := NewKeyBuilder("production")

	assert.Equal(t, "prod:judging:token:mx_abc", kb.KeyJudgeToken("mx_abc"))
	assert.Equal(t, "prod:judging:progress:42", kb.KeyJudgeProgress(42))
	assert.Equal(t, "prod:lock:propose:42", kb.KeyProposeLock(42))
	assert.Equal(t, "prod:lock:approve:w-1", kb.KeyApproveLock("w-1"))
	assert.Equal(t, "prod:lock:reminders:42", kb.KeyReminderLock(42))
}
