package types

// Service is a named service exposing a set of executable methods. The
// ingress adapter implements it so that both request generations can be
// dispatched through one registry.
type Service interface {
	Name() string
	Methods() Signatures
	Method(name string) (Executable, error)
}
