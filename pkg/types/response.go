package types

// MessageSuccess is the message carried by every successful envelope.
const MessageSuccess = "success"

// Envelope is the uniform {message, data} body of every response. The HTTP
// status travels alongside it, never inside.
type Envelope[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// Success wraps data in a success envelope.
func Success[T any](data T) Envelope[T] {
	return Envelope[T]{Message: MessageSuccess, Data: data}
}

// Failure builds an error envelope; data is always null.
func Failure(message string) Envelope[*struct{}] {
	return Envelope[*struct{}]{Message: message}
}
