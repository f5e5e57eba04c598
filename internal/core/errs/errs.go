// Package errs holds the typed outcomes the settlement core returns to its
// callers. All of these are recoverable user-facing conditions; anything
// else bubbling out of a service is a systemic fault.
package errs

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrRoundNotOpen      = errors.New("round not open")
	ErrRoundAlreadyOpen  = errors.New("a round is already open")
	ErrDeadlinePassed    = errors.New("betting deadline passed")
	ErrBetsLocked        = errors.New("bets are locked")
	ErrDuplicateBet      = errors.New("bet already placed for this round")
	ErrInsufficientFunds = errors.New("insufficient tokens")
	ErrResultsIncomplete = errors.New("not all required match outcomes declared")

	ErrSeasonNotOpen     = errors.New("survival season not open")
	ErrSeasonNotDecided  = errors.New("more than one survival player still alive")
	ErrSeasonExists      = errors.New("an unfinished survival season already exists")
	ErrPlayerNotAlive    = errors.New("survival player not alive")
	ErrNotJoined         = errors.New("user has not joined the season")
	ErrAlreadyJoined     = errors.New("user already joined the season")
	ErrTeamAlreadyUsed   = errors.New("team already used this season")
	ErrTeamNotPickable   = errors.New("team not eligible for this round")
	ErrPickAlreadyExists = errors.New("pick already submitted for this round")

	ErrDuelNotPending     = errors.New("duel is not pending")
	ErrNotOpponent        = errors.New("only the challenged user may respond")
	ErrOpponentIneligible = errors.New("opponent has no bet for the open round")
	ErrSelfChallenge      = errors.New("cannot challenge yourself")

	ErrNotFound = errors.New("not found")
)
