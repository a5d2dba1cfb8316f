package kv

import (
	"strings"

	"github.com/taskvault/backend/domain"
)

// Storage key layout: user_<userId>_task_<taskId>. TaskPrefix(userID) is a
// strict prefix of every key TaskKey produces for that user, and of nobody
// else's: user ids may not contain the separator rune, so a prefix scan for
// one user can never match another user's records (e.g. "a" vs "ab", or an
// id that itself embeds "_task_").
const (
	keyUserPrefix = "user_"
	keyTaskInfix  = "_task_"
)

// TaskPrefix returns the scan prefix that enumerates exactly one user's
// task keys.
func TaskPrefix(userID string) (string, error) {
	if err := validateUserID(userID); err != nil {
		return "", err
	}
	return keyUserPrefix + userID + keyTaskInfix, nil
}

// TaskKey maps a (userId, taskId) pair to its storage key.
func TaskKey(userID, taskID string) (string, error) {
	prefix, err := TaskPrefix(userID)
	if err != nil {
		return "", err
	}
	if taskID == "" {
		return "", domain.ErrInvalidArgument
	}
	return prefix + taskID, nil
}

// SplitTaskKey recovers the (userId, taskId) pair from a storage key. The
// cut at the first infix is unambiguous because user ids carry no separator.
func SplitTaskKey(key string) (userID, taskID string, ok bool) {
	rest, found := strings.CutPrefix(key, keyUserPrefix)
	if !found {
		return "", "", false
	}
	userID, taskID, found = strings.Cut(rest, keyTaskInfix)
	if !found || userID == "" || taskID == "" {
		return "", "", false
	}
	return userID, taskID, true
}

func validateUserID(userID string) error {
	if userID == "" {
		return domain.ErrInvalidArgument
	}
	if strings.ContainsRune(userID, '_') {
		return domain.NewError(domain.ErrCodeInvalid, "user id contains reserved separator")
	}
	return nil
}
