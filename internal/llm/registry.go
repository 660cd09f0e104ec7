package llm

import "errors"

var (
	ErrUnknownProvider = errors.New("unknown provider")
	ErrNoProviders     = errors.New("no providers configured")
)

// Registry хранит сконфигурированных провайдеров по имени.
// Собирается один раз на старте, дальше только читается.
type Registry struct {
	providers map[string]Provider
	order     []string
	def       string
}

func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

func (r *Registry) Register(name string, p Provider) {
	if _, ok := r.providers[name]; !ok {
		r.order = append(r.order, name)
	}
	r.providers[name] = p
	if r.def == "" {
		r.def = name
	}
}

func (r *Registry) SetDefault(name string) error {
	if _, ok := r.providers[name]; !ok {
		return ErrUnknownProvider
	}
	r.def = name
	return nil
}

// Get возвращает провайдера по имени, пустое имя = дефолтный
func (r *Registry) Get(name string) (Provider, error) {
	if len(r.providers) == 0 {
		return nil, ErrNoProviders
	}
	if name == "" {
		name = r.def
	}
	p, ok := r.providers[name]
	if !ok {
		return nil, ErrUnknownProvider
	}
	return p, nil
}

func (r *Registry) Default() (Provider, error) {
	return r.Get("")
}

// All возвращает провайдеров в порядке регистрации
func (r *Registry) All() []Provider {
	out := make([]Provider, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.providers[name])
	}
	return out
}

func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry) Len() int { return len(r.providers) }
