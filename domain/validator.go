package domain

import (
	"chat-relay/errors"
	goerrors "errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type messageRules struct {
	Content string `validate:"required,max=1000"`
	Room    string `validate:"max=50"`
}

type roomRules struct {
	Room string `validate:"required,max=50"`
}

type paginationRules struct {
	Limit  int `validate:"min=1,max=100"`
	Offset int `validate:"min=0"`
}

type lookupRules struct {
	ID string `validate:"required"`
}

type searchRules struct {
	Terms string `validate:"required"`
	Limit int    `validate:"min=1,max=100"`
}

// NormalizeMessageInput trims every field, validates content and room,
// then applies the anonymous user and general room defaults.
func NormalizeMessageInput(input MessageInput) (MessageInput, error) {
	normalized := MessageInput{
		Content: strings.TrimSpace(input.Content),
		Room:    strings.TrimSpace(input.Room),
		UserID:  strings.TrimSpace(input.UserID),
	}
	if err := validate.Struct(messageRules{Content: normalized.Content, Room: normalized.Room}); err != nil {
		return MessageInput{}, toDomainError(err)
	}
	if normalized.Room == "" {
		normalized.Room = DefaultRoom
	}
	if normalized.UserID == "" {
		normalized.UserID = AnonymousUser
	}
	return normalized, nil
}

// NormalizeRoom trims a room name and checks it holds between 1 and 50 characters.
func NormalizeRoom(room string) (string, error) {
	trimmed := strings.TrimSpace(room)
	if err := validate.Struct(roomRules{Room: trimmed}); err != nil {
		return "", toDomainError(err)
	}
	return trimmed, nil
}

// ResolveListQuery applies the default room, limit and offset then validates the range.
func ResolveListQuery(query ListMessagesQuery) (room string, limit int, offset int, err error) {
	room = strings.TrimSpace(query.Room)
	if room == "" {
		room = DefaultRoom
	}
	limit, offset = DefaultLimit, 0
	if query.Limit != nil {
		limit = *query.Limit
	}
	if query.Offset != nil {
		offset = *query.Offset
	}
	if err = validate.Struct(paginationRules{Limit: limit, Offset: offset}); err != nil {
		return "", 0, 0, toDomainError(err)
	}
	return room, limit, offset, nil
}

func NormalizeID(id string) (string, error) {
	trimmed := strings.TrimSpace(id)
	if err := validate.Struct(lookupRules{ID: trimmed}); err != nil {
		return "", toDomainError(err)
	}
	return trimmed, nil
}

// ResolveSearchQuery trims the terms, applies the default room and limit, then validates.
func ResolveSearchQuery(query SearchQuery) (SearchQuery, int, error) {
	resolved := SearchQuery{
		Room:  strings.TrimSpace(query.Room),
		Terms: strings.TrimSpace(query.Terms),
	}
	if resolved.Room == "" {
		resolved.Room = DefaultRoom
	}
	limit := DefaultLimit
	if query.Limit != nil {
		limit = *query.Limit
	}
	if err := validate.Struct(searchRules{Terms: resolved.Terms, Limit: limit}); err != nil {
		return SearchQuery{}, 0, toDomainError(err)
	}
	return resolved, limit, nil
}

// toDomainError maps the first failing field to its sentinel error.
func toDomainError(err error) error {
	var fieldErrors validator.ValidationErrors
	if !goerrors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}
	fe := fieldErrors[0]
	switch fe.Field() {
	case "Content":
		if fe.Tag() == "required" {
			return errors.ErrEmptyContent
		}
		return errors.ErrContentTooLong
	case "Room":
		return errors.ErrInvalidRoom
	case "Limit":
		return errors.ErrInvalidLimit
	case "Offset":
		return errors.ErrInvalidOffset
	case "ID", "MessageID":
		return errors.ErrBlankID
	case "Terms":
		return errors.ErrBlankQuery
	default:
		return fmt.Errorf("%w: %s", errors.ErrValidation, fe.Error())
	}
}
