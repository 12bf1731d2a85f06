package application

import "go.opentelemetry.io/otel"

const scopeName = "voice-assistant/internal/application"

var tracer = otel.Tracer(scopeName)
