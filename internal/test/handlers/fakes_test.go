package handlers_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"maid-cafe-backend/internal/models"
)

// fakeStore is an in-memory stand-in for the database client. Writes go
// through the same methods the handlers use, so tests can count them and
// assert on what actually got persisted.
type fakeStore struct {
	maids   map[string]*models.Maid
	users   map[string]*models.User
	menus   map[string]*models.Menu
	orders  map[string]*models.Order
	instax  map[string]*models.Instax
	history map[string]*models.InstaxHistory

	nextID int
	tick   int

	maidGets     int
	maidUpdates  int
	userUpdates  int
	menuUpdates  int
	orderUpdates int

	failSetMenuKey   error
	failSetInstaxKey error
}

// idBefore mirrors the storage layer's length-then-lexicographic id
// ordering, which keeps serial text ids numeric.
func idBefore(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		maids:   map[string]*models.Maid{},
		users:   map[string]*models.User{},
		menus:   map[string]*models.Menu{},
		orders:  map[string]*models.Order{},
		instax:  map[string]*models.Instax{},
		history: map[string]*models.InstaxHistory{},
	}
}

var fakeEpoch = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

// now is a deterministic clock; every call is one second later than the
// previous one, so ordering assertions never race.
func (s *fakeStore) now() time.Time {
	s.tick++
	return fakeEpoch.Add(time.Duration(s.tick) * time.Second)
}

func (s *fakeStore) assignID(id string) string {
	if id != "" {
		return id
	}
	s.nextID++
	return fmt.Sprint(s.nextID)
}

func (s *fakeStore) seedMaid(m models.Maid) {
	s.maids[m.ID] = &m
}

func (s *fakeStore) seedUser(u models.User) {
	s.users[u.ID] = &u
}

func (s *fakeStore) seedMenu(m models.Menu) {
	s.menus[m.ID] = &m
}

func (s *fakeStore) seedOrder(o models.Order) {
	s.orders[o.ID] = &o
}

func (s *fakeStore) seedInstax(i models.Instax) {
	s.instax[i.ID] = &i
}

func (s *fakeStore) seedHistory(h models.InstaxHistory) {
	s.history[h.ID] = &h
}

// Maid store.

func (s *fakeStore) CreateMaid(id, name string, isInstaxAvailable bool) (*models.Maid, error) {
	now := s.now()
	m := &models.Maid{
		ID:                s.assignID(id),
		Name:              name,
		IsInstaxAvailable: isInstaxAvailable,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	s.maids[m.ID] = m
	out := *m
	return &out, nil
}

func (s *fakeStore) GetMaid(id string) (*models.Maid, error) {
	s.maidGets++
	m, ok := s.maids[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	out := *m
	return &out, nil
}

func (s *fakeStore) MaidExists(id string) (bool, error) {
	_, ok := s.maids[id]
	return ok, nil
}

func (s *fakeStore) ListMaids(page, perPage int, isActive *bool) ([]models.Maid, error) {
	var all []models.Maid
	for _, m := range s.maids {
		if isActive != nil && m.IsActive != *isActive {
			continue
		}
		all = append(all, *m)
	}
	sort.Slice(all, func(i, j int) bool { return idBefore(all[i].ID, all[j].ID) })

	offset := (page - 1) * perPage
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + perPage
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (s *fakeStore) UpdateMaid(m *models.Maid) error {
	if _, ok := s.maids[m.ID]; !ok {
		return sql.ErrNoRows
	}
	s.maidUpdates++
	stored := *m
	stored.UpdatedAt = s.now()
	s.maids[m.ID] = &stored
	return nil
}

func (s *fakeStore) SetMaidActive(id string, isActive bool) error {
	m, ok := s.maids[id]
	if !ok {
		return sql.ErrNoRows
	}
	m.IsActive = isActive
	m.UpdatedAt = s.now()
	return nil
}

func (s *fakeStore) DeleteMaid(id string) error {
	delete(s.maids, id)
	return nil
}

func (s *fakeStore) ListUsersByMaid(maidID string) ([]models.User, error) {
	var out []models.User
	for _, u := range s.users {
		if u.IsValid && u.MaidID.Valid && u.MaidID.String == maidID {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeStore) LatestInstaxIDsForUsers(userIDs []string) (map[string]string, error) {
	want := map[string]bool{}
	for _, id := range userIDs {
		want[id] = true
	}
	latest := map[string]*models.Instax{}
	for _, ix := range s.instax {
		if !want[ix.UserID] {
			continue
		}
		if cur, ok := latest[ix.UserID]; !ok || ix.CreatedAt.After(cur.CreatedAt) {
			latest[ix.UserID] = ix
		}
	}
	out := map[string]string{}
	for userID, ix := range latest {
		out[userID] = ix.ID
	}
	return out, nil
}

// User store.

func (s *fakeStore) UpsertUser(id string, seatID sql.NullInt64, maidID string, status sql.NullString) (*models.User, error) {
	now := s.now()
	u, ok := s.users[id]
	if !ok {
		u = &models.User{ID: id, CreatedAt: now}
		s.users[id] = u
	}
	u.SeatID = seatID
	u.MaidID = sql.NullString{String: maidID, Valid: true}
	u.Status = status
	u.InstaxMaidID = sql.NullString{}
	u.IsValid = true
	u.UpdatedAt = now
	out := *u
	return &out, nil
}

func (s *fakeStore) GetUser(id string) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	out := *u
	return &out, nil
}

func (s *fakeStore) ListUsers() ([]models.User, error) {
	var out []models.User
	for _, u := range s.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeStore) GetUserBySeat(seatID int64) (*models.User, error) {
	var occupant *models.User
	for _, u := range s.users {
		if !u.IsValid || !u.SeatID.Valid || u.SeatID.Int64 != seatID {
			continue
		}
		if occupant == nil || u.UpdatedAt.After(occupant.UpdatedAt) {
			occupant = u
		}
	}
	if occupant == nil {
		return nil, sql.ErrNoRows
	}
	out := *occupant
	return &out, nil
}

func (s *fakeStore) UpdateUser(u *models.User) error {
	if _, ok := s.users[u.ID]; !ok {
		return sql.ErrNoRows
	}
	s.userUpdates++
	stored := *u
	stored.UpdatedAt = s.now()
	s.users[u.ID] = &stored
	return nil
}

// Menu store.

func (s *fakeStore) CreateMenu(id, name string, description sql.NullString, stock int) (*models.Menu, error) {
	now := s.now()
	m := &models.Menu{
		ID:          s.assignID(id),
		Name:        name,
		Description: description,
		Stock:       stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.menus[m.ID] = m
	out := *m
	return &out, nil
}

func (s *fakeStore) SetMenuImageKey(id, imageKey string) error {
	if s.failSetMenuKey != nil {
		return s.failSetMenuKey
	}
	m, ok := s.menus[id]
	if !ok {
		return sql.ErrNoRows
	}
	m.ImageKey = sql.NullString{String: imageKey, Valid: true}
	m.UpdatedAt = s.now()
	return nil
}

func (s *fakeStore) GetMenu(id string) (*models.Menu, error) {
	m, ok := s.menus[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	out := *m
	return &out, nil
}

func (s *fakeStore) ListMenus(availableOnly bool) ([]models.Menu, error) {
	var out []models.Menu
	for _, m := range s.menus {
		if availableOnly && m.Stock <= 0 {
			continue
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return idBefore(out[i].ID, out[j].ID) })
	return out, nil
}

func (s *fakeStore) UpdateMenu(m *models.Menu) error {
	if _, ok := s.menus[m.ID]; !ok {
		return sql.ErrNoRows
	}
	s.menuUpdates++
	stored := *m
	stored.UpdatedAt = s.now()
	s.menus[m.ID] = &stored
	return nil
}

func (s *fakeStore) DeleteMenu(id string) error {
	delete(s.menus, id)
	return nil
}

// Order store.

func (s *fakeStore) CreateOrder(id, userID, menuID string) (*models.Order, error) {
	now := s.now()
	o := &models.Order{
		ID:        s.assignID(id),
		UserID:    userID,
		MenuID:    menuID,
		State:     models.OrderStatePending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.orders[o.ID] = o
	out := *o
	return &out, nil
}

func (s *fakeStore) GetOrder(id string) (*models.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	out := *o
	return &out, nil
}

func (s *fakeStore) ListOrders() ([]models.Order, error) {
	var out []models.Order
	for _, o := range s.orders {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeStore) ListOrdersByUser(userID string) ([]models.Order, error) {
	var out []models.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeStore) UpdateOrderState(id, state string) error {
	o, ok := s.orders[id]
	if !ok {
		return sql.ErrNoRows
	}
	s.orderUpdates++
	o.State = state
	o.UpdatedAt = s.now()
	return nil
}

// Instax store.

func (s *fakeStore) CreateInstax(id, userID, maidID, imageKey string) (*models.Instax, error) {
	i := &models.Instax{
		ID:        s.assignID(id),
		UserID:    userID,
		MaidID:    maidID,
		ImageKey:  sql.NullString{String: imageKey, Valid: imageKey != ""},
		CreatedAt: s.now(),
	}
	s.instax[i.ID] = i
	out := *i
	return &out, nil
}

func (s *fakeStore) GetInstax(id string) (*models.Instax, error) {
	i, ok := s.instax[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	out := *i
	return &out, nil
}

func (s *fakeStore) GetLatestInstaxByUser(userID string) (*models.Instax, error) {
	var latest *models.Instax
	for _, i := range s.instax {
		if i.UserID != userID {
			continue
		}
		if latest == nil || i.CreatedAt.After(latest.CreatedAt) {
			latest = i
		}
	}
	if latest == nil {
		return nil, sql.ErrNoRows
	}
	out := *latest
	return &out, nil
}

func (s *fakeStore) SetInstaxImageKey(id, imageKey string) error {
	if s.failSetInstaxKey != nil {
		return s.failSetInstaxKey
	}
	i, ok := s.instax[id]
	if !ok {
		return sql.ErrNoRows
	}
	i.ImageKey = sql.NullString{String: imageKey, Valid: true}
	return nil
}

func (s *fakeStore) CreateInstaxHistory(id, instaxID, imageKey string) (*models.InstaxHistory, error) {
	h := &models.InstaxHistory{
		ID:         s.assignID(id),
		InstaxID:   instaxID,
		ImageKey:   imageKey,
		ArchivedAt: s.now(),
	}
	s.history[h.ID] = h
	out := *h
	return &out, nil
}

func (s *fakeStore) GetInstaxHistory(id string) (*models.InstaxHistory, error) {
	h, ok := s.history[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	out := *h
	return &out, nil
}

func (s *fakeStore) ListInstaxHistoryByUser(userID string) ([]models.InstaxHistory, error) {
	var out []models.InstaxHistory
	for _, h := range s.history {
		i, ok := s.instax[h.InstaxID]
		if !ok || i.UserID != userID {
			continue
		}
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ArchivedAt.After(out[j].ArchivedAt) })
	return out, nil
}

func (s *fakeStore) DeleteInstaxHistory(id string) error {
	delete(s.history, id)
	return nil
}

// fakeObjects is an in-memory blob store with deterministic keys.
type fakeObjects struct {
	base      string
	keySeq    int
	uploads   map[string][]byte
	deleted   []string
	uploadErr error
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{base: "https://cdn.example", uploads: map[string][]byte{}}
}

func (f *fakeObjects) BuildKey(prefix, filename string) string {
	f.keySeq++
	return fmt.Sprintf("%s/%d-%s", prefix, f.keySeq, filename)
}

func (f *fakeObjects) Upload(key string, data []byte, contentType string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.uploads[key] = data
	return nil
}

func (f *fakeObjects) Delete(key string) error {
	delete(f.uploads, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeObjects) PublicURL(key string) string {
	if f.base == "" {
		return key
	}
	return f.base + "/" + key
}

// Request helpers.

func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(data)
}

func multipartBody(t *testing.T, fields map[string]string, fileField, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := w.CreateFormFile(fileField, filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func decode(t *testing.T, w *httptest.ResponseRecorder) models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func dataMap(t *testing.T, resp models.APIResponse) map[string]interface{} {
	t.Helper()
	m, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "response data is not an object")
	return m
}
