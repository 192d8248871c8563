package contexthelpers

type contextKey string

const csrfTokenContextKey = contextKey("csrfToken")
const requestIDContextKey = contextKey("requestID")
