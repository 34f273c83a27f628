package redis

import "fmt"

// KeyBuilder prefixes every key with the deploy environment so staging and
// production can share a Redis instance.
type KeyBuilder struct {
	prefix string
}

// NewKeyBuilder creates a key builder for the given environment.
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	if environment == "development" || environment == "staging" || environment == "test" {
		prefix = "staging"
	}
	return &KeyBuilder{prefix: prefix}
}

// BuildKey constructs a key with the environment prefix.
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

// Prefix returns the current environment prefix.
func (kb *KeyBuilder) Prefix() string {
	return kb.prefix
}

// KeyJudgeToken is the cache key for a resolved judge token.
func (kb *KeyBuilder) KeyJudgeToken(token string) string {
	return kb.BuildKey(fmt.Sprintf("judging:token:%s", token))
}

// KeyJudgeProgress is the cache key for a hackathon's progress snapshot.
func (kb *KeyBuilder) KeyJudgeProgress(hackathonID int64) string {
	return kb.BuildKey(fmt.Sprintf("judging:progress:%d", hackathonID))
}

// KeyProposeLock is the idempotency lock for proposing a hackathon's winners.
func (kb *KeyBuilder) KeyProposeLock(hackathonID int64) string {
	return kb.BuildKey(fmt.Sprintf("lock:propose:%d", hackathonID))
}

// KeyApproveLock is the idempotency lock for approving one winner.
func (kb *KeyBuilder) KeyApproveLock(winnerID string) string {
	return kb.BuildKey(fmt.Sprintf("lock:approve:%s", winnerID))
}

// KeyReminderLock throttles judge reminder sends per hackathon.
func (kb *KeyBuilder) KeyReminderLock(hackathonID int64) string {
	return kb.BuildKey(fmt.Sprintf("lock:reminders:%d", hackathonID))
}
