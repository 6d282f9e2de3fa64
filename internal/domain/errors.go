package domain

import "errors"

var (
	// ErrInvalidInput is returned for malformed or missing request fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized is returned when the admin code does not match.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrAdminDisabled indicates no admin code is configured.
	ErrAdminDisabled = errors.New("admin code not configured")
	// ErrDuplicateSubmission is returned when the player already answered the item.
	ErrDuplicateSubmission = errors.New("duplicate submission")
	// ErrDailyLimitReached is returned once the player used up the day's submissions.
	ErrDailyLimitReached = errors.New("daily limit reached")
	// ErrNotYetAvailable is returned for items scheduled after the day being played.
	ErrNotYetAvailable = errors.New("item not yet available")
	// ErrItemNotFound indicates the item id does not resolve.
	ErrItemNotFound = errors.New("item not found")
	// ErrHintNotFound indicates the hint id does not resolve.
	ErrHintNotFound = errors.New("hint not found")
	// ErrCapacityReached is returned when adding an item beyond the configured maximum.
	ErrCapacityReached = errors.New("item capacity reached")
	// ErrTooManyItemsForDay is returned when a day assignment exceeds its slots.
	ErrTooManyItemsForDay = errors.New("too many items for day")
	// ErrUnknownAction is returned for unsupported admin actions.
	ErrUnknownAction = errors.New("unknown action")
)

// Rejection is a terminal business-rule failure carrying the message shown to players.
type Rejection struct {
	Err     error
	Message string
}

func (r *Rejection) Error() string {
	return r.Err.Error()
}

func (r *Rejection) Unwrap() error {
	return r.Err
}

var messages = map[error]string{
	ErrInvalidInput:        "Données manquantes",
	ErrUnauthorized:        "Code administrateur invalide",
	ErrAdminDisabled:       "Erreur de configuration",
	ErrDuplicateSubmission: "Tu as déjà répondu à cet indice",
	ErrDailyLimitReached:   "Tu as déjà participé aujourd'hui, reviens demain!",
	ErrNotYetAvailable:     "Cet indice n'est pas encore disponible",
	ErrItemNotFound:        "Indice non trouvé",
	ErrHintNotFound:        "Sous-indice non trouvé",
	ErrCapacityReached:     "Nombre maximum d'indices atteint",
	ErrTooManyItemsForDay:  "Trop d'indices pour cette journée",
	ErrUnknownAction:       "Action inconnue",
}

// Reject wraps a sentinel with its French message.
func Reject(err error) *Rejection {
	return &Rejection{Err: err, Message: MessageFor(err)}
}

// RejectWith wraps a sentinel with a custom message.
func RejectWith(err error, message string) *Rejection {
	return &Rejection{Err: err, Message: message}
}

// MessageFor returns the player-facing message for err, falling back to a generic one.
func MessageFor(err error) string {
	var rej *Rejection
	if errors.As(err, &rej) && rej.Message != "" {
		return rej.Message
	}
	for sentinel, msg := range messages {
		if errors.Is(err, sentinel) {
			return msg
		}
	}
	return "Une erreur est survenue"
}

// IsRejection reports whether err is a known business-rule or input failure.
func IsRejection(err error) bool {
	var rej *Rejection
	if errors.As(err, &rej) {
		return true
	}
	for sentinel := range messages {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
