package telegram

import (
	"errors"
	"strconv"
	"strings"

	"github.com/lexarena/lexarena-bot/internal/domain/entities"
)

// Callback action constants. Telegram limits callback data to 64 bytes, so
// actions are short.
const (
	actionMenu      = "menu"
	actionMode      = "mode"
	actionPlay      = "play"
	actionAnswer    = "ans"
	actionQuit      = "quit"
	actionChallenge = "chal"
	actionChalTopic = "chalt"
	actionAccept    = "acc"
	actionDecline   = "dec"
	actionMatchAns  = "mans"
	actionReport    = "rep"
	actionTop       = "top"
	actionSettings  = "set"
	actionReview    = "rev"
)

// Settings sub-actions.
const (
	settingsMenu      = "menu"
	settingsCount     = "count"
	settingsName      = "name"
	settingsAnonymity = "anon"
)

const maxCallbackData = 64

var errBadCallback = errors.New("malformed callback data")

// callbackData represents structured callback data.
type callbackData struct {
	Action string
	Params []string
	Raw    string
}

// encode creates callback string.
func (cd callbackData) encode() string {
	if len(cd.Params) == 0 {
		return cd.Action
	}
	return cd.Action + ":" + strings.Join(cd.Params, ":")
}

// decodeCallback parses callback data string.
func decodeCallback(data string) callbackData {
	parts := strings.Split(data, ":")
	return callbackData{
		Action: parts[0],
		Params: parts[1:],
		Raw:    data,
	}
}

// param returns the i-th parameter.
func (cd callbackData) param(i int) (string, error) {
	if i >= len(cd.Params) || cd.Params[i] == "" {
		return "", errBadCallback
	}
	return cd.Params[i], nil
}

func (cd callbackData) intParam(i int) (int, error) {
	s, err := cd.param(i)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errBadCallback
	}
	return n, nil
}

func (cd callbackData) int64Param(i int) (int64, error) {
	s, err := cd.param(i)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errBadCallback
	}
	return n, nil
}

func buildMenuCallback() string {
	return actionMenu
}

func buildModeCallback(mode entities.GameMode) string {
	return callbackData{Action: actionMode, Params: []string{string(mode)}}.encode()
}

// buildPlayCallback starts a session of mode on topicID.
func buildPlayCallback(mode entities.GameMode, topicID string) string {
	return callbackData{Action: actionPlay, Params: []string{string(mode), topicID}}.encode()
}

// buildAnswerCallback answers question index of the running session.
func buildAnswerCallback(index, choice int) string {
	return callbackData{
		Action: actionAnswer,
		Params: []string{strconv.Itoa(index), strconv.Itoa(choice)},
	}.encode()
}

func buildQuitCallback() string {
	return actionQuit
}

func buildChallengeCallback(opponentID int64) string {
	return callbackData{
		Action: actionChallenge,
		Params: []string{strconv.FormatInt(opponentID, 10)},
	}.encode()
}

func buildChallengeTopicCallback(opponentID int64, topicID string) string {
	return callbackData{
		Action: actionChalTopic,
		Params: []string{strconv.FormatInt(opponentID, 10), topicID},
	}.encode()
}

func buildAcceptCallback(matchID string) string {
	return callbackData{Action: actionAccept, Params: []string{matchID}}.encode()
}

func buildDeclineCallback(matchID string) string {
	return callbackData{Action: actionDecline, Params: []string{matchID}}.encode()
}

// buildMatchAnswerCallback answers question index of a match.
func buildMatchAnswerCallback(matchID string, index, choice int) string {
	return callbackData{
		Action: actionMatchAns,
		Params: []string{matchID, strconv.Itoa(index), strconv.Itoa(choice)},
	}.encode()
}

func buildReportCallback(questionID string) string {
	return callbackData{Action: actionReport, Params: []string{questionID}}.encode()
}

func buildTopCallback(mode entities.GameMode) string {
	return callbackData{Action: actionTop, Params: []string{string(mode)}}.encode()
}

// buildReviewCallback opens question index of topicID in review mode. Without
// a topic it opens the topic picker.
func buildReviewCallback(topicID string, index int) string {
	if topicID == "" {
		return actionReview
	}
	return callbackData{
		Action: actionReview,
		Params: []string{topicID, strconv.Itoa(index)},
	}.encode()
}

// buildSettingsCallback builds callback data for settings-related actions.
func buildSettingsCallback(subAction string, value ...string) string {
	params := []string{subAction}
	params = append(params, value...)
	return callbackData{
		Action: actionSettings,
		Params: params,
	}.encode()
}
