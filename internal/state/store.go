package state

import (
	"sort"
	"sync"
	"time"

	"github.com/solohsu29/gondola-manager/internal/entity"
	"github.com/solohsu29/gondola-manager/internal/expiry"
)

// Store is an in-memory snapshot of the record store used to answer derived
// dashboard views. Collection fields are never nil, mutations replace by id
// without reordering unrelated elements, and partial updates preserve photo
// and document arrays unless the caller explicitly supplies replacements.
type Store struct {
	mu sync.RWMutex

	projects  []entity.Project
	gondolas  []entity.Gondola
	certs     []entity.CertificateExpiry
	documents []entity.Document
}

func NewStore() *Store {
	return &Store{
		projects:  []entity.Project{},
		gondolas:  []entity.Gondola{},
		certs:     []entity.CertificateExpiry{},
		documents: []entity.Document{},
	}
}

// SetProjects replaces the project snapshot.
func (s *Store) SetProjects(projects []entity.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = make([]entity.Project, len(projects))
	copy(s.projects, projects)
	for i := range s.projects {
		s.projects[i].Normalize()
	}
}

// SetGondolas replaces the gondola snapshot.
func (s *Store) SetGondolas(gondolas []entity.Gondola) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gondolas = make([]entity.Gondola, len(gondolas))
	copy(s.gondolas, gondolas)
	for i := range s.gondolas {
		s.gondolas[i].Normalize()
	}
}

// SetCertificates replaces the certificate snapshot.
func (s *Store) SetCertificates(certs []entity.CertificateExpiry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.certs = make([]entity.CertificateExpiry, len(certs))
	copy(s.certs, certs)
}

// SetDocuments replaces the standalone document snapshot.
func (s *Store) SetDocuments(docs []entity.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents = make([]entity.Document, len(docs))
	copy(s.documents, docs)
}

func (s *Store) AddProject(p entity.Project) {
	p.Normalize()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = append(s.projects, p)
}

// ProjectPatch carries the fields a partial project update may change. Nil
// slices mean "leave as is".
type ProjectPatch struct {
	ClientName *string
	SiteName   *string
	StartDate  *time.Time
	EndDate    *time.Time
	Status     *string
	Gondolas   []entity.Gondola
	Documents  []entity.Document
}

func (s *Store) UpdateProject(id string, patch ProjectPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.projects {
		if s.projects[i].ID.String() != id {
			continue
		}
		p := &s.projects[i]
		if patch.ClientName != nil {
			p.ClientName = *patch.ClientName
		}
		if patch.SiteName != nil {
			p.SiteName = *patch.SiteName
		}
		if patch.StartDate != nil {
			p.StartDate = *patch.StartDate
		}
		if patch.EndDate != nil {
			p.EndDate = patch.EndDate
		}
		if patch.Status != nil {
			p.Status = *patch.Status
		}
		if patch.Gondolas != nil {
			p.Gondolas = patch.Gondolas
		}
		if patch.Documents != nil {
			p.Documents = patch.Documents
		}
		return
	}
}

func (s *Store) DeleteProject(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.projects {
		if s.projects[i].ID.String() == id {
			s.projects = append(s.projects[:i], s.projects[i+1:]...)
			return
		}
	}
}

func (s *Store) AddGondola(g entity.Gondola) {
	g.Normalize()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gondolas = append(s.gondolas, g)
}

// GondolaPatch carries the fields a partial gondola update may change. Nil
// Photos/Documents preserve the existing arrays; an update that omits them
// must not drop them.
type GondolaPatch struct {
	SerialNumber   *string
	Status         *string
	Location       *entity.Location
	DeployedAt     *time.Time
	LastInspection *time.Time
	NextInspection *time.Time
	Photos         []entity.Photo
	Documents      []entity.Document
}

func (s *Store) UpdateGondola(id string, patch GondolaPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.gondolas {
		if s.gondolas[i].ID.String() != id {
			continue
		}
		g := &s.gondolas[i]
		if patch.SerialNumber != nil {
			g.SerialNumber = *patch.SerialNumber
		}
		if patch.Status != nil {
			g.Status = *patch.Status
		}
		if patch.Location != nil {
			g.Location = *patch.Location
		}
		if patch.DeployedAt != nil {
			g.DeployedAt = patch.DeployedAt
		}
		if patch.LastInspection != nil {
			g.LastInspection = patch.LastInspection
		}
		if patch.NextInspection != nil {
			g.NextInspection = patch.NextInspection
		}
		if patch.Photos != nil {
			g.Photos = patch.Photos
		}
		if patch.Documents != nil {
			g.Documents = patch.Documents
		}
		return
	}
}

func (s *Store) DeleteGondola(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.gondolas {
		if s.gondolas[i].ID.String() == id {
			s.gondolas = append(s.gondolas[:i], s.gondolas[i+1:]...)
			return
		}
	}
}

func (s *Store) AddGondolaPhoto(gondolaID string, photo entity.Photo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.gondolas {
		if s.gondolas[i].ID.String() == gondolaID {
			s.gondolas[i].Photos = append(s.gondolas[i].Photos, photo)
			return
		}
	}
}

func (s *Store) DeleteGondolaPhoto(gondolaID, photoID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.gondolas {
		if s.gondolas[i].ID.String() != gondolaID {
			continue
		}
		photos := s.gondolas[i].Photos
		for j := range photos {
			if photos[j].ID.String() == photoID {
				s.gondolas[i].Photos = append(photos[:j], photos[j+1:]...)
				return
			}
		}
		return
	}
}

// Gondolas returns a copy of the gondola snapshot.
func (s *Store) Gondolas() []entity.Gondola {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.Gondola, len(s.gondolas))
	copy(out, s.gondolas)
	return out
}

// Projects returns a copy of the project snapshot.
func (s *Store) Projects() []entity.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.Project, len(s.projects))
	copy(out, s.projects)
	return out
}

func (s *Store) TotalProjects() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.projects)
}

// ActiveGondolas returns the gondolas currently deployed.
func (s *Store) ActiveGondolas() []entity.Gondola {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []entity.Gondola{}
	for _, g := range s.gondolas {
		if g.Status == entity.GondolaStatusDeployed {
			out = append(out, g)
		}
	}
	return out
}

// PendingInspections returns gondolas whose next inspection falls within the
// pending window as of now.
func (s *Store) PendingInspections(now time.Time) []entity.Gondola {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return expiry.PendingInspections(s.gondolas, now)
}

// RecentProjects returns projects newest first.
func (s *Store) RecentProjects() []entity.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.Project, len(s.projects))
	copy(out, s.projects)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// OrphanDocuments returns uploaded documents not yet attached to a project
// or gondola.
func (s *Store) OrphanDocuments() []entity.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []entity.Document{}
	for _, d := range s.documents {
		if d.ProjectID == nil && d.GondolaID == nil {
			out = append(out, d)
		}
	}
	return out
}

// ExpiringCertificates returns the certificate entries needing attention.
func (s *Store) ExpiringCertificates() []entity.CertificateExpiry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return expiry.ExpiringCertificates(s.certs)
}

// CertificateWidget returns the certificate entries ranked for display.
func (s *Store) CertificateWidget() []entity.CertificateExpiry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return expiry.SortForWidget(s.certs)
}
