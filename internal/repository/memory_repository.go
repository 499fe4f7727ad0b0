package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rongwang/nailpos-server/internal/models"
	"github.com/shopspring/decimal"
)

// MemoryRepository implements the Repository interface in process memory. It
// backs DB_DRIVER=memory and the test suites. Each write holds the lock for
// its whole duration so it is all-or-nothing like a transaction.
type MemoryRepository struct {
	mu sync.RWMutex

	services map[int64]models.Service
	people   map[int64]models.SalesPerson
	sales    map[int64]models.Sale
	lines    map[int64]models.SaleLine

	users     map[string]models.IdentityUser
	roles     map[models.Role]struct{}
	userRoles map[string]map[models.Role]struct{}

	nextServiceID int64
	nextPersonID  int64
	nextSaleID    int64
	nextLineID    int64
}

// NewMemoryRepository creates an empty store with the given menu
func NewMemoryRepository(seed []models.Service) *MemoryRepository {
	r := &MemoryRepository{
		services:  make(map[int64]models.Service),
		people:    make(map[int64]models.SalesPerson),
		sales:     make(map[int64]models.Sale),
		lines:     make(map[int64]models.SaleLine),
		users:     make(map[string]models.IdentityUser),
		roles:     make(map[models.Role]struct{}),
		userRoles: make(map[string]map[models.Role]struct{}),
	}

	now := time.Now().UTC()
	for _, svc := range seed {
		r.nextServiceID++
		svc.ID = r.nextServiceID
		svc.Price = svc.Price.Round(2)
		svc.CreatedAt = now
		svc.UpdatedAt = now
		r.services[svc.ID] = svc
	}
	return r
}

// Catalog repository methods
func (r *MemoryRepository) ListServices(ctx context.Context) ([]models.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	services := make([]models.Service, 0, len(r.services))
	for _, svc := range r.services {
		services = append(services, svc)
	}
	sort.Slice(services, func(i, j int) bool {
		if services[i].Name != services[j].Name {
			return services[i].Name < services[j].Name
		}
		return services[i].ID < services[j].ID
	})
	return services, nil
}

func (r *MemoryRepository) GetService(ctx context.Context, id int64) (*models.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	svc, ok := r.services[id]
	if !ok {
		return nil, nil
	}
	return &svc, nil
}

func (r *MemoryRepository) CreateService(ctx context.Context, svc *models.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	r.nextServiceID++
	svc.ID = r.nextServiceID
	svc.Price = svc.Price.Round(2)
	svc.CreatedAt = now
	svc.UpdatedAt = now
	r.services[svc.ID] = *svc
	return nil
}

func (r *MemoryRepository) UpdateService(ctx context.Context, svc *models.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.services[svc.ID]
	if !ok {
		return ErrNotFound
	}

	existing.Name = svc.Name
	existing.Price = svc.Price.Round(2)
	existing.UpdatedAt = time.Now().UTC()
	r.services[svc.ID] = existing
	*svc = existing
	return nil
}

func (r *MemoryRepository) GetServicePrices(ctx context.Context) (map[int64]decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	prices := make(map[int64]decimal.Decimal, len(r.services))
	for id, svc := range r.services {
		prices[id] = svc.Price
	}
	return prices, nil
}

// Roster repository methods
func (r *MemoryRepository) ListSalesPeople(ctx context.Context) ([]models.SalesPerson, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	people := make([]models.SalesPerson, 0, len(r.people))
	for _, sp := range r.people {
		people = append(people, clonePerson(sp))
	}
	sort.Slice(people, func(i, j int) bool {
		if people[i].Name != people[j].Name {
			return people[i].Name < people[j].Name
		}
		return people[i].ID < people[j].ID
	})
	return people, nil
}

func (r *MemoryRepository) GetSalesPerson(ctx context.Context, id int64) (*models.SalesPerson, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sp, ok := r.people[id]
	if !ok {
		return nil, nil
	}
	sp = clonePerson(sp)
	return &sp, nil
}

func (r *MemoryRepository) GetSalesPersonByEmail(ctx context.Context, email string) (*models.SalesPerson, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, sp := range r.people {
		if sp.Email == email {
			sp = clonePerson(sp)
			return &sp, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) CreateSalesPerson(ctx context.Context, sp *models.SalesPerson) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTaken(sp.Email, 0) {
		return ErrDuplicateEmail
	}

	now := time.Now().UTC()
	r.nextPersonID++
	sp.ID = r.nextPersonID
	sp.CreatedAt = now
	sp.UpdatedAt = now
	r.people[sp.ID] = clonePerson(*sp)
	return nil
}

func (r *MemoryRepository) UpdateSalesPerson(ctx context.Context, sp *models.SalesPerson) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.people[sp.ID]
	if !ok {
		return ErrNotFound
	}
	if r.emailTaken(sp.Email, sp.ID) {
		return ErrDuplicateEmail
	}

	existing.Name = sp.Name
	existing.Email = sp.Email
	existing.Role = sp.Role
	existing.UpdatedAt = time.Now().UTC()
	r.people[sp.ID] = existing
	*sp = clonePerson(existing)
	return nil
}

func (r *MemoryRepository) DeleteSalesPerson(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.people[id]; !ok {
		return ErrNotFound
	}
	delete(r.people, id)
	return nil
}

func (r *MemoryRepository) LinkIdentityUser(ctx context.Context, salesPersonID int64, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sp, ok := r.people[salesPersonID]
	if !ok {
		return ErrNotFound
	}
	id := userID
	sp.IdentityUserID = &id
	sp.UpdatedAt = time.Now().UTC()
	r.people[salesPersonID] = sp
	return nil
}

func (r *MemoryRepository) emailTaken(email string, exceptID int64) bool {
	for id, sp := range r.people {
		if id != exceptID && sp.Email == email {
			return true
		}
	}
	return false
}

// Sale repository methods
func (r *MemoryRepository) CreateSale(ctx context.Context, sale *models.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextSaleID++
	sale.ID = r.nextSaleID
	r.sales[sale.ID] = models.Sale{ID: sale.ID, SaleDate: sale.SaleDate, SalesPerson: sale.SalesPerson}

	for i := range sale.Lines {
		sale.Lines[i].SaleID = sale.ID
		r.insertLine(&sale.Lines[i])
	}
	return nil
}

func (r *MemoryRepository) GetSale(ctx context.Context, id int64) (*models.Sale, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sale, ok := r.sales[id]
	if !ok {
		return nil, nil
	}
	sale.Lines = r.linesOf(id)
	return &sale, nil
}

func (r *MemoryRepository) ApplySaleChanges(ctx context.Context, changes models.SaleChangeSet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sale, ok := r.sales[changes.SaleID]
	if !ok {
		return ErrNotFound
	}

	sale.SalesPerson = changes.SalesPerson
	sale.SaleDate = changes.SaleDate
	r.sales[sale.ID] = sale

	for _, line := range changes.Updates {
		existing, ok := r.lines[line.ID]
		if !ok || existing.SaleID != changes.SaleID {
			continue
		}
		existing.ServiceID = line.ServiceID
		existing.Quantity = line.Quantity
		existing.UnitPrice = line.UnitPrice.Round(2)
		r.lines[line.ID] = existing
	}

	for i := range changes.Inserts {
		changes.Inserts[i].SaleID = changes.SaleID
		r.insertLine(&changes.Inserts[i])
	}

	for _, id := range changes.DeleteLineIDs {
		if existing, ok := r.lines[id]; ok && existing.SaleID == changes.SaleID {
			delete(r.lines, id)
		}
	}
	return nil
}

func (r *MemoryRepository) DeleteSale(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sales[id]; !ok {
		return ErrNotFound
	}
	for lineID, line := range r.lines {
		if line.SaleID == id {
			delete(r.lines, lineID)
		}
	}
	delete(r.sales, id)
	return nil
}

func (r *MemoryRepository) FindSales(ctx context.Context, q models.SaleQuery) ([]models.Sale, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []models.Sale
	for _, sale := range r.sales {
		if q.From != nil && sale.SaleDate.Before(*q.From) {
			continue
		}
		if q.Until != nil && !sale.SaleDate.Before(*q.Until) {
			continue
		}
		sale.Lines = r.linesOf(sale.ID)
		if q.Text != "" && !r.matchesText(sale, q.Text) {
			continue
		}
		matched = append(matched, sale)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].SaleDate.Equal(matched[j].SaleDate) {
			return matched[i].SaleDate.After(matched[j].SaleDate)
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	if q.Limit <= 0 {
		return matched, total, nil
	}

	start := q.Offset
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := start + q.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

// matchesText mirrors the SQL filter: case-sensitive substring of the sales
// person or of any line's current service name
func (r *MemoryRepository) matchesText(sale models.Sale, text string) bool {
	if strings.Contains(sale.SalesPerson, text) {
		return true
	}
	for _, l := range sale.Lines {
		if svc, ok := r.services[l.ServiceID]; ok && strings.Contains(svc.Name, text) {
			return true
		}
	}
	return false
}

func (r *MemoryRepository) insertLine(line *models.SaleLine) {
	r.nextLineID++
	line.ID = r.nextLineID
	line.UnitPrice = line.UnitPrice.Round(2)
	stored := *line
	stored.ServiceName = ""
	r.lines[line.ID] = stored
	if svc, ok := r.services[line.ServiceID]; ok {
		line.ServiceName = svc.Name
	}
}

func (r *MemoryRepository) linesOf(saleID int64) []models.SaleLine {
	lines := []models.SaleLine{}
	for _, l := range r.lines {
		if l.SaleID != saleID {
			continue
		}
		if svc, ok := r.services[l.ServiceID]; ok {
			l.ServiceName = svc.Name
		}
		lines = append(lines, l)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ID < lines[j].ID })
	return lines
}

// Identity repository methods
func (r *MemoryRepository) GetIdentityUserByID(ctx context.Context, id string) (*models.IdentityUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	user = cloneUser(user)
	return &user, nil
}

func (r *MemoryRepository) GetIdentityUserByEmail(ctx context.Context, email string) (*models.IdentityUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			user = cloneUser(user)
			return &user, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) CreateIdentityUser(ctx context.Context, user *models.IdentityUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email {
			return ErrDuplicateEmail
		}
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.CreatedAt = time.Now().UTC()
	r.users[user.ID] = cloneUser(*user)
	return nil
}

func (r *MemoryRepository) UpdateLoginState(ctx context.Context, userID string, failedCount int, lockoutEnd *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return ErrNotFound
	}
	user.AccessFailedCount = failedCount
	user.LockoutEnd = nil
	if lockoutEnd != nil {
		end := *lockoutEnd
		user.LockoutEnd = &end
	}
	r.users[userID] = user
	return nil
}

func (r *MemoryRepository) RoleExists(ctx context.Context, role models.Role) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.roles[role]
	return ok, nil
}

func (r *MemoryRepository) CreateRole(ctx context.Context, role models.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.roles[role] = struct{}{}
	return nil
}

func (r *MemoryRepository) IsInRole(ctx context.Context, userID string, role models.Role) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.userRoles[userID][role]
	return ok, nil
}

func (r *MemoryRepository) AddToRole(ctx context.Context, userID string, role models.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[userID]; !ok {
		return ErrNotFound
	}
	if _, ok := r.roles[role]; !ok {
		return ErrNotFound
	}
	if r.userRoles[userID] == nil {
		r.userRoles[userID] = make(map[models.Role]struct{})
	}
	r.userRoles[userID][role] = struct{}{}
	return nil
}

func (r *MemoryRepository) RemoveFromRole(ctx context.Context, userID string, role models.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.userRoles[userID], role)
	return nil
}

func (r *MemoryRepository) GetUserRoles(ctx context.Context, userID string) ([]models.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roles := []models.Role{}
	for role := range r.userRoles[userID] {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles, nil
}

func clonePerson(sp models.SalesPerson) models.SalesPerson {
	if sp.IdentityUserID != nil {
		id := *sp.IdentityUserID
		sp.IdentityUserID = &id
	}
	return sp
}

func cloneUser(u models.IdentityUser) models.IdentityUser {
	if u.LockoutEnd != nil {
		end := *u.LockoutEnd
		u.LockoutEnd = &end
	}
	return u
}
