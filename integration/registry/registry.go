package registry

import (
	"mosaic/integration"
	"mosaic/integration/front"
	"mosaic/integration/hubspot"
	"mosaic/integration/pipedrive"
	"mosaic/integration/zendesk"
	U "mosaic/util"

	"github.com/pkg/errors"
)

var ErrUnknownProvider = errors.New("unknown provider for object kind")

// Registry holds the provider bindings per object kind. It is built once at
// startup and read-only afterwards, so lookups need no locking.
type Registry struct {
	companies map[string]integration.CompanyBinding
	users     map[string]integration.UserBinding
	notes     map[string]integration.NoteBinding
	comments  map[string]integration.CommentBinding
}

func New() *Registry {
	return &Registry{
		companies: make(map[string]integration.CompanyBinding),
		users:     make(map[string]integration.UserBinding),
		notes:     make(map[string]integration.NoteBinding),
		comments:  make(map[string]integration.CommentBinding),
	}
}

func validateSlug(slug, objectKind string) error {
	if !U.IsValidProviderForObjectKind(slug, objectKind) {
		return errors.Errorf("provider %s does not support object kind %s", slug, objectKind)
	}

	return nil
}

func (r *Registry) RegisterCompany(slug string, binding integration.CompanyBinding) error {
	if err := validateSlug(slug, U.OBJECT_KIND_COMPANY); err != nil {
		return err
	}
	if _, exists := r.companies[slug]; exists {
		return errors.Errorf("duplicate company binding for provider %s", slug)
	}

	r.companies[slug] = binding
	return nil
}

func (r *Registry) RegisterUser(slug string, binding integration.UserBinding) error {
	if err := validateSlug(slug, U.OBJECT_KIND_USER); err != nil {
		return err
	}
	if _, exists := r.users[slug]; exists {
		return errors.Errorf("duplicate user binding for provider %s", slug)
	}

	r.users[slug] = binding
	return nil
}

func (r *Registry) RegisterNote(slug string, binding integration.NoteBinding) error {
	if err := validateSlug(slug, U.OBJECT_KIND_NOTE); err != nil {
		return err
	}
	if _, exists := r.notes[slug]; exists {
		return errors.Errorf("duplicate note binding for provider %s", slug)
	}

	r.notes[slug] = binding
	return nil
}

func (r *Registry) RegisterComment(slug string, binding integration.CommentBinding) error {
	if err := validateSlug(slug, U.OBJECT_KIND_COMMENT); err != nil {
		return err
	}
	if _, exists := r.comments[slug]; exists {
		return errors.Errorf("duplicate comment binding for provider %s", slug)
	}

	r.comments[slug] = binding
	return nil
}

func (r *Registry) Company(slug string) (integration.CompanyBinding, error) {
	binding, exists := r.companies[slug]
	if !exists {
		return integration.CompanyBinding{}, errors.Wrapf(ErrUnknownProvider, "company/%s", slug)
	}

	return binding, nil
}

func (r *Registry) User(slug string) (integration.UserBinding, error) {
	binding, exists := r.users[slug]
	if !exists {
		return integration.UserBinding{}, errors.Wrapf(ErrUnknownProvider, "user/%s", slug)
	}

	return binding, nil
}

func (r *Registry) Note(slug string) (integration.NoteBinding, error) {
	binding, exists := r.notes[slug]
	if !exists {
		return integration.NoteBinding{}, errors.Wrapf(ErrUnknownProvider, "note/%s", slug)
	}

	return binding, nil
}

func (r *Registry) Comment(slug string) (integration.CommentBinding, error) {
	binding, exists := r.comments[slug]
	if !exists {
		return integration.CommentBinding{}, errors.Wrapf(ErrUnknownProvider, "comment/%s", slug)
	}

	return binding, nil
}

// BuildDefault wires the full provider matrix: hubspot and pipedrive for the
// CRM kinds, zendesk and front for ticketing comments.
func BuildDefault(connections integration.ConnectionSource,
	resolver integration.RemoteIDResolver) (*Registry, error) {
	r := New()

	hubspotClient := hubspot.NewClient(connections)
	pipedriveClient := pipedrive.NewClient(connections)
	zendeskClient := zendesk.NewClient(connections)
	frontClient := front.NewClient(connections)

	registrations := []func() error{
		func() error {
			return r.RegisterCompany(U.PROVIDER_NAME_HUBSPOT, integration.CompanyBinding{
				Adapter: &hubspot.CompanyAdapter{Client: hubspotClient},
				Mapper:  &hubspot.CompanyMapper{},
			})
		},
		func() error {
			return r.RegisterUser(U.PROVIDER_NAME_HUBSPOT, integration.UserBinding{
				Adapter: &hubspot.UserAdapter{Client: hubspotClient},
				Mapper:  &hubspot.UserMapper{},
			})
		},
		func() error {
			return r.RegisterNote(U.PROVIDER_NAME_HUBSPOT, integration.NoteBinding{
				Adapter: &hubspot.NoteAdapter{Client: hubspotClient},
				Mapper:  &hubspot.NoteMapper{Resolver: resolver},
			})
		},
		func() error {
			return r.RegisterCompany(U.PROVIDER_NAME_PIPEDRIVE, integration.CompanyBinding{
				Adapter: &pipedrive.OrganizationAdapter{Client: pipedriveClient},
				Mapper:  &pipedrive.OrganizationMapper{},
			})
		},
		func() error {
			return r.RegisterUser(U.PROVIDER_NAME_PIPEDRIVE, integration.UserBinding{
				Adapter: &pipedrive.UserAdapter{Client: pipedriveClient},
				Mapper:  &pipedrive.UserMapper{},
			})
		},
		func() error {
			return r.RegisterNote(U.PROVIDER_NAME_PIPEDRIVE, integration.NoteBinding{
				Adapter: &pipedrive.NoteAdapter{Client: pipedriveClient},
				Mapper:  &pipedrive.NoteMapper{Resolver: resolver},
			})
		},
		func() error {
			return r.RegisterComment(U.PROVIDER_NAME_ZENDESK, integration.CommentBinding{
				Adapter: &zendesk.CommentAdapter{Client: zendeskClient},
				Mapper:  &zendesk.CommentMapper{Resolver: resolver},
			})
		},
		func() error {
			return r.RegisterComment(U.PROVIDER_NAME_FRONT, integration.CommentBinding{
				Adapter: &front.CommentAdapter{Client: frontClient},
				Mapper:  &front.CommentMapper{Resolver: resolver},
			})
		},
	}

	for _, register := range registrations {
		if err := register(); err != nil {
			return nil, err
		}
	}

	return r, nil
}
