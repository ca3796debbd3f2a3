package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	natsadapter "github.com/mohashafici/DalagHub/internal/adapter/messaging/nats"
	"github.com/mohashafici/DalagHub/internal/marketplace/domain"
	"github.com/mohashafici/DalagHub/internal/marketplace/session"
	"github.com/mohashafici/DalagHub/internal/platform/logger"
)

var (
	ErrNotLoggedIn   = errors.New("You must be logged in to add a product")
	ErrLoginRequired = errors.New("You must be logged in")
	ErrInvalidStatus = errors.New("status must be active or sold")
	ErrInvalidReason = errors.New("invalid report reason")
)

const refreshTimeout = 15 * time.Second

// ListingCache is a look-aside cache for the single-listing miss path.
// Get returns (nil, nil) on a miss.
type ListingCache interface {
	Get(ctx context.Context, id string) (*domain.Listing, error)
	Set(ctx context.Context, listing *domain.Listing) error
	Delete(ctx context.Context, id string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

type ReportMailer interface {
	SendListingReportedEmail(toEmail, listingTitle, reason string) error
}

type AddProductInput struct {
	Title       string
	Category    domain.Category
	Subcategory string
	Quantity    string
	Price       string
	Description string
	Location    string
	Images      []string
}

type ReportInput struct {
	ProductID   string
	Reason      domain.ReportReason
	Description string
}

// Store owns the in-memory collection of product listings. The public set
// holds active listings only, newest first, with seller name and phone
// joined from profiles at fetch time; the per-user set holds the current
// identity's listings in any status. Mutations go to the remote store and
// then trigger a full refetch; there are no optimistic local inserts.
type Store struct {
	listings  domain.ListingRepository
	profiles  domain.ProfileRepository
	reports   domain.ReportRepository
	cache     ListingCache
	session   *session.Store
	publisher EventPublisher
	mailer    ReportMailer
	modEmail  string
	logger    logger.Logger

	mu              sync.RWMutex
	products        []*domain.Listing
	allUserProducts []*domain.Listing
	lastErr         error

	subMu       sync.Mutex
	subscribers map[int]func()
	nextSubID   int

	refreshCh   chan struct{}
	done        chan struct{}
	unsubscribe func()
	closeOnce   sync.Once
}

type Config struct {
	Cache           ListingCache
	Publisher       EventPublisher
	Mailer          ReportMailer
	ModerationEmail string
}

func NewStore(
	listings domain.ListingRepository,
	profiles domain.ProfileRepository,
	reports domain.ReportRepository,
	sess *session.Store,
	cfg Config,
	log logger.Logger,
) *Store {
	s := &Store{
		listings:    listings,
		profiles:    profiles,
		reports:     reports,
		cache:       cfg.Cache,
		session:     sess,
		publisher:   cfg.Publisher,
		mailer:      cfg.Mailer,
		modEmail:    cfg.ModerationEmail,
		logger:      log,
		subscribers: make(map[int]func()),
		refreshCh:   make(chan struct{}, 1),
		done:        make(chan struct{}),
	}

	// Refetch whenever the authenticated identity changes. The session
	// callback only schedules the work; the refresh loop does the I/O.
	s.unsubscribe = sess.Subscribe(func(session.Snapshot) {
		s.scheduleRefresh()
	})
	go s.refreshLoop()

	return s
}

func (s *Store) scheduleRefresh() {
	select {
	case s.refreshCh <- struct{}{}:
	default:
	}
}

func (s *Store) refreshLoop() {
	for {
		select {
		case <-s.done:
			return
		case <-s.refreshCh:
			ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
			if err := s.FetchProducts(ctx); err != nil {
				s.logger.Errorf("catalog: scheduled refresh failed: %v", err)
			}
			cancel()
		}
	}
}

// FetchProducts loads every active listing newest first, joins seller
// name/phone from a batch profile lookup, and separately loads the current
// identity's own listings when authenticated. An in-flight fetch superseded
// by a newer one is not aborted; the last response to finish wins. Failures
// are recorded in the observable error state instead of being swallowed.
func (s *Store) FetchProducts(ctx context.Context) error {
	active, err := s.listings.FindActive(ctx)
	if err != nil {
		s.setError(fmt.Errorf("fetch products: %w", err))
		return err
	}

	sellerIDs := distinctSellerIDs(active)
	sellerProfiles, err := s.profiles.FindByIDs(ctx, sellerIDs)
	if err != nil {
		s.setError(fmt.Errorf("fetch seller profiles: %w", err))
		return err
	}
	joinSellers(active, sellerProfiles)

	var own []*domain.Listing
	snap := s.session.Current()
	if snap.Authenticated() {
		own, err = s.listings.FindBySeller(ctx, snap.Identity.ID)
		if err != nil {
			s.setError(fmt.Errorf("fetch own listings: %w", err))
			return err
		}
		if snap.Profile != nil {
			for _, l := range own {
				l.SellerName = snap.Profile.Name
				l.SellerPhone = snap.Profile.Phone
			}
		}
	}

	s.mu.Lock()
	s.products = active
	s.allUserProducts = own
	s.lastErr = nil
	s.mu.Unlock()
	s.notify()
	return nil
}

// AddProduct inserts a new listing and triggers a full refetch. Price
// defaults to "Negotiable" when blank and the placeholder image substitutes
// for an empty image list. Requires an authenticated identity; nothing is
// sent remotely otherwise.
func (s *Store) AddProduct(ctx context.Context, input AddProductInput) (*domain.Listing, error) {
	snap := s.session.Current()
	if !snap.Authenticated() {
		return nil, ErrNotLoggedIn
	}

	price := strings.TrimSpace(input.Price)
	if price == "" {
		price = domain.DefaultPrice
	}
	images := input.Images
	if len(images) == 0 {
		images = []string{domain.PlaceholderImage}
	}

	listing := &domain.Listing{
		Title:       input.Title,
		Category:    input.Category,
		Subcategory: input.Subcategory,
		Quantity:    input.Quantity,
		Price:       price,
		Description: input.Description,
		Images:      images,
		Location:    input.Location,
		Status:      domain.StatusActive,
		SellerID:    snap.Identity.ID,
	}
	if err := s.listings.Insert(ctx, listing); err != nil {
		return nil, fmt.Errorf("add product: %w", err)
	}
	if snap.Profile != nil {
		listing.SellerName = snap.Profile.Name
		listing.SellerPhone = snap.Profile.Phone
	}

	s.publish(ctx, natsadapter.SubjectListingCreated, map[string]string{
		"listing_id": listing.ID,
		"seller_id":  listing.SellerID,
	})

	if err := s.FetchProducts(ctx); err != nil {
		s.logger.Warnf("catalog: refresh after add failed: %v", err)
	}
	return listing, nil
}

// GetProductByID checks the in-memory collection first, then the look-aside
// cache, then the remote store with a seller profile join. A miss fetched
// remotely is not added to the listing collection. Not-found is a nil
// result, not an error.
func (s *Store) GetProductByID(ctx context.Context, id string) (*domain.Listing, error) {
	s.mu.RLock()
	for _, l := range s.products {
		if l.ID == id {
			s.mu.RUnlock()
			return l, nil
		}
	}
	for _, l := range s.allUserProducts {
		if l.ID == id {
			s.mu.RUnlock()
			return l, nil
		}
	}
	s.mu.RUnlock()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		if err != nil {
			s.logger.Warnf("catalog: cache get failed for %s: %v", id, err)
		} else if cached != nil {
			return cached, nil
		}
	}

	listing, err := s.listings.FindByID(ctx, id)
	if errors.Is(err, domain.ErrListingNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}

	seller, err := s.profiles.FindByID(ctx, listing.SellerID)
	if err != nil && !errors.Is(err, domain.ErrProfileNotFound) {
		return nil, fmt.Errorf("get seller profile for %s: %w", id, err)
	}
	if seller != nil {
		listing.SellerName = seller.Name
		listing.SellerPhone = seller.Phone
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, listing); err != nil {
			s.logger.Warnf("catalog: cache set failed for %s: %v", id, err)
		}
	}
	return listing, nil
}

// GetProductsByUser filters the cached active set by seller. Sold listings
// are not in that set; the profile screen uses AllUserProducts instead.
func (s *Store) GetProductsByUser(userID string) []*domain.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Listing, 0)
	for _, l := range s.products {
		if l.SellerID == userID {
			out = append(out, l)
		}
	}
	return out
}

// AllUserProducts returns the current identity's listings in any status,
// as of the last fetch.
func (s *Store) AllUserProducts() []*domain.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.allUserProducts
}

// Products returns the public active collection as of the last fetch.
func (s *Store) Products() []*domain.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.products
}

// LastError reports the most recent fetch failure, or nil after a
// successful fetch.
func (s *Store) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// DeleteProduct removes the listing permanently from either status, then
// refetches. Ownership is enforced by the remote store's policy layer, not
// here.
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	if !s.session.Current().Authenticated() {
		return ErrLoginRequired
	}
	if err := s.listings.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	s.dropFromCache(ctx, id)
	s.publish(ctx, natsadapter.SubjectListingDeleted, map[string]string{"listing_id": id})

	if err := s.FetchProducts(ctx); err != nil {
		s.logger.Warnf("catalog: refresh after delete failed: %v", err)
	}
	return nil
}

// UpdateProductStatus toggles a listing between active and sold, then
// refetches. Sold listings leave the public set on the refetch.
func (s *Store) UpdateProductStatus(ctx context.Context, id string, status domain.ListingStatus) error {
	if !s.session.Current().Authenticated() {
		return ErrLoginRequired
	}
	if status != domain.StatusActive && status != domain.StatusSold {
		return ErrInvalidStatus
	}
	if err := s.listings.UpdateStatus(ctx, id, status); err != nil {
		return fmt.Errorf("update status of %s: %w", id, err)
	}
	s.dropFromCache(ctx, id)
	s.publish(ctx, natsadapter.SubjectListingStatusChanged, map[string]string{
		"listing_id": id,
		"status":     string(status),
	})

	if err := s.FetchProducts(ctx); err != nil {
		s.logger.Warnf("catalog: refresh after status update failed: %v", err)
	}
	return nil
}

// ReportProduct inserts a report row. It never mutates the reported
// listing or the cached collection. The reporter id is attached when a
// session is present; anonymous reports are accepted.
func (s *Store) ReportProduct(ctx context.Context, input ReportInput) error {
	if !input.Reason.Valid() {
		return ErrInvalidReason
	}

	report := &domain.Report{
		ProductID:   input.ProductID,
		Reason:      input.Reason,
		Description: input.Description,
	}
	if snap := s.session.Current(); snap.Authenticated() {
		report.ReporterID = snap.Identity.ID
	}
	if err := s.reports.Insert(ctx, report); err != nil {
		return fmt.Errorf("report product %s: %w", input.ProductID, err)
	}

	s.publish(ctx, natsadapter.SubjectListingReported, map[string]string{
		"listing_id": input.ProductID,
		"reason":     string(input.Reason),
	})
	s.notifyModeration(ctx, input)
	return nil
}

// Subscribe registers an observer notified after every collection change.
func (s *Store) Subscribe(fn func()) func() {
	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subscribers, id)
		s.subMu.Unlock()
	}
}

// Close detaches from the session store and stops the refresh loop.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		s.unsubscribe()
		close(s.done)
	})
}

func (s *Store) setError(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}

func (s *Store) dropFromCache(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		s.logger.Warnf("catalog: cache delete failed for %s: %v", id, err)
	}
}

func (s *Store) publish(ctx context.Context, subject string, data interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, subject, data); err != nil {
		s.logger.Warnf("catalog: failed to publish %s: %v", subject, err)
	}
}

func (s *Store) notifyModeration(ctx context.Context, input ReportInput) {
	if s.mailer == nil || s.modEmail == "" {
		return
	}
	title := input.ProductID
	if listing, err := s.GetProductByID(ctx, input.ProductID); err == nil && listing != nil {
		title = listing.Title
	}
	if err := s.mailer.SendListingReportedEmail(s.modEmail, title, string(input.Reason)); err != nil {
		s.logger.Warnf("catalog: failed to send moderation email: %v", err)
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	fns := make([]func(), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func distinctSellerIDs(listings []*domain.Listing) []string {
	seen := make(map[string]struct{}, len(listings))
	ids := make([]string, 0, len(listings))
	for _, l := range listings {
		if _, ok := seen[l.SellerID]; ok {
			continue
		}
		seen[l.SellerID] = struct{}{}
		ids = append(ids, l.SellerID)
	}
	return ids
}

func joinSellers(listings []*domain.Listing, sellers map[string]*domain.Profile) {
	for _, l := range listings {
		if p, ok := sellers[l.SellerID]; ok {
			l.SellerName = p.Name
			l.SellerPhone = p.Phone
		}
	}
}
