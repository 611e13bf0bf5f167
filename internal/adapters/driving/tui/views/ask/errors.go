package ask

import "errors"

// ErrNoAnswerService is returned when a question is asked without an answer service.
var ErrNoAnswerService = errors.New("answer service not available")
