package handlers

import (
	"creativehub/internal/config"
	"creativehub/internal/dispatch"
	"creativehub/internal/repos"
	"creativehub/internal/services"
	"creativehub/internal/session"
	"creativehub/internal/storage"
	"creativehub/internal/view"

	"github.com/jmoiron/sqlx"
)

// Infra carries the outside-world adapters chosen at boot.
type Infra struct {
	Assets    storage.Store
	Publisher dispatch.Publisher
}

type Deps struct {
	Session  *session.Context
	Settings *services.SettingsService
	Tracker  *view.Tracker

	AuthHandler      *AuthHandler
	PublicHandler    *PublicHandler
	ProductHandler   *ProductHandler
	DashboardHandler *DashboardHandler
	AdminHandler     *AdminHandler
	ContentHandler   *ContentHandler

	publisher dispatch.Publisher
	unsub     []func()
}

func NewDeps(db *sqlx.DB, cfg config.Config, infra Infra) *Deps {
	userRepo := repos.NewUserRepo(db)
	catRepo := repos.NewCategoryRepo(db)
	prodRepo := repos.NewProductRepo(db)
	purchaseRepo := repos.NewPurchaseRepo(db)
	favRepo := repos.NewFavoriteRepo(db)
	notifyRepo := repos.NewNotificationRepo(db)
	campaignRepo := repos.NewCampaignRepo(db)
	blogRepo := repos.NewBlogRepo(db)
	settingsRepo := repos.NewSettingsRepo(db)
	activityRepo := repos.NewActivityRepo(db)
	statsRepo := repos.NewStatsRepo(db)

	if infra.Publisher == nil {
		infra.Publisher = dispatch.LogPublisher{}
	}
	if infra.Assets == nil {
		infra.Assets = storage.NewLocal(cfg.MediaDir)
	}

	settingsSvc := &services.SettingsService{Repo: settingsRepo}
	authSvc := &services.AuthService{Users: userRepo, Settings: settingsSvc}
	notifySvc := &services.NotificationService{Repo: notifyRepo, Users: userRepo}
	catalogSvc := services.NewCatalogService(catRepo, prodRepo)
	sellerSvc := services.NewSellerService(catRepo, prodRepo)
	orderSvc := services.NewOrderService(prodRepo, purchaseRepo, notifySvc)
	favSvc := services.NewFavoriteService(favRepo, prodRepo)
	moderationSvc := &services.ModerationService{Cats: catRepo, Prods: prodRepo, Notify: notifySvc}
	campaignSvc := &services.CampaignService{Repo: campaignRepo, Pub: infra.Publisher}
	blogSvc := &services.BlogService{Repo: blogRepo}
	analyticsSvc := &services.AnalyticsService{Stats: statsRepo, Activity: activityRepo}
	activitySvc := &services.ActivityService{Repo: activityRepo}
	membersSvc := &services.UserAdminService{Users: userRepo}
	profileSvc := &services.ProfileService{Users: userRepo}

	sess := session.New(authSvc)
	tracker := view.NewTracker()

	d := &Deps{
		Session:  sess,
		Settings: settingsSvc,
		Tracker:  tracker,

		AuthHandler: &AuthHandler{Session: sess, CookieSecure: cfg.CookieSecure},
		PublicHandler: &PublicHandler{
			Catalog: catalogSvc, Favorites: favSvc, Blog: blogSvc,
			Campaigns: campaignSvc, Notify: notifySvc, Tracker: tracker,
		},
		ProductHandler: &ProductHandler{Catalog: catalogSvc, Orders: orderSvc, Favorites: favSvc},
		DashboardHandler: &DashboardHandler{
			Catalog: catalogSvc, Seller: sellerSvc, Orders: orderSvc, Favorites: favSvc,
			Notify: notifySvc, Profiles: profileSvc, Analytics: analyticsSvc,
			Assets: infra.Assets, Tracker: tracker,
		},
		AdminHandler: &AdminHandler{
			Analytics: analyticsSvc, Members: membersSvc, Moderation: moderationSvc,
			Orders: orderSvc, Settings: settingsSvc, Activity: activitySvc,
			Assets: infra.Assets, Tracker: tracker,
		},
		ContentHandler: &ContentHandler{
			Campaigns: campaignSvc, Blog: blogSvc, Activity: activitySvc,
			Assets: infra.Assets, Tracker: tracker,
		},
		publisher: infra.Publisher,
	}

	d.unsub = append(d.unsub,
		sess.Subscribe(activitySvc.OnSession),
		sess.Subscribe(func(e session.Event) {
			if e.Kind == session.EventSignedOut {
				tracker.Forget(e.SID)
			}
		}),
	)
	return d
}

// Close detaches the session subscribers, closes the session context and
// flushes the campaign publisher.
func (d *Deps) Close() error {
	for _, u := range d.unsub {
		u()
	}
	d.unsub = nil
	_ = d.Session.Close()
	return d.publisher.Close()
}
