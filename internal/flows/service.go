package flows

import "context"

// Service is the centralized flow runner built once by the root engine.
type Service struct {
	deps Deps
}

// New returns a flow service with immutable dependency wiring.
func New(deps Deps) Service {
	return Service{deps: deps}
}

// Initialized reports whether the service has been wired with flow deps.
func (s Service) Initialized() bool {
	return s.deps.Login.ConnectCache != nil && s.deps.Validate.ParseToken != nil
}

func (s Service) Login(ctx context.Context, email, password string) LoginOutcome {
	return RunLogin(ctx, email, password, s.deps.Login)
}

func (s Service) Validate(ctx context.Context, token string, mode int) ValidateResult {
	return RunValidate(ctx, token, mode, s.deps.Validate)
}
