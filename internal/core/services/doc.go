// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (providers, evidence sinks and run stores).
//
// The provider registry is the only place that knows the concrete
// provider packages; everything else works against driven.Provider.
package services
