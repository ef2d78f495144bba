package otel

import (
	"go.opentelemetry.io/otel"

	"github.com/okidwi/storefront/internal/constants"
)

var Tracer = otel.Tracer(constants.AppStorefront)
