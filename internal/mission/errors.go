package mission

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound               = errors.New("not found")
	ErrForbidden              = errors.New("only the mission chief can do that")
	ErrSelfJoinRejected       = errors.New("the chief cannot join their own mission as crew")
	ErrSelfKickRejected       = errors.New("the chief cannot kick themselves")
	ErrNotJoinable            = errors.New("mission is not joinable")
	ErrNotLeavable            = errors.New("mission is not leavable")
	ErrNotKickable            = errors.New("cannot kick members in current mission status")
	ErrMissionFull            = errors.New("mission is full")
	ErrAlreadyJoined          = errors.New("already joined this mission")
	ErrInvalidStateTransition = errors.New("invalid mission state transition")
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrStoreUnavailable       = errors.New("store unavailable")
)

// ErrUniqueViolation is returned by stores when a membership pair already exists.
var ErrUniqueViolation = errors.New("unique violation")

var codes = []struct {
	err  error
	code string
}{
	{ErrNotFound, "NotFound"},
	{ErrForbidden, "Forbidden"},
	{ErrSelfJoinRejected, "SelfJoinRejected"},
	{ErrSelfKickRejected, "SelfKickRejected"},
	{ErrNotJoinable, "NotJoinable"},
	{ErrNotLeavable, "NotLeavable"},
	{ErrNotKickable, "NotKickable"},
	{ErrMissionFull, "MissionFull"},
	{ErrAlreadyJoined, "AlreadyJoined"},
	{ErrInvalidStateTransition, "InvalidStateTransition"},
	{ErrInvalidArgument, "InvalidArgument"},
	{ErrStoreUnavailable, "StoreUnavailable"},
}

// Code returns the stable name of the error kind, or "" for foreign errors.
func Code(err error) string {
	if err == nil {
		return ""
	}

	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}

	return ""
}

func IsBusiness(err error) bool {
	c := Code(err)

	return c != "" && c != "StoreUnavailable"
}

// storeError passes contract errors through and marks everything else as an
// infrastructure failure.
func storeError(err error) error {
	if err == nil {
		return nil
	}

	if Code(err) != "" {
		return err
	}

	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func transition(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidStateTransition, fmt.Sprintf(format, args...))
}
