package knowledge

// Corpus returns the compiled-in support knowledge base. Documents are
// defined here rather than loaded from disk; editing this table and
// redeploying is the only way content changes.
func Corpus() []Document {
	return []Document{
		{
			Keywords: []string{"install", "setup", "get started", "getting started", "onboard"},
			Content: "Getting started with HaulStack: sign up at haulstack.io, verify your " +
				"email, and run the setup wizard. The wizard walks you through creating your " +
				"first fleet, inviting dispatchers, and connecting your ELD provider. Most " +
				"teams are fully set up in under 15 minutes.",
			Category: "getting-started",
			Priority: 10,
		},
		{
			Keywords: []string{"price", "pricing", "cost", "plan", "subscription", "free trial"},
			Content: "HaulStack pricing: the Starter plan is free for up to 3 trucks. Fleet " +
				"($29/truck/month) adds live tracking, dispatch boards, and invoicing. " +
				"Enterprise adds SSO, custom integrations, and priority support. Every paid " +
				"plan starts with a 14-day free trial, no credit card required.",
			Category: "billing",
			Priority: 9,
		},
		{
			Keywords: []string{"login", "password", "reset password", "locked out", "sign in"},
			Content: "Trouble signing in? Use the \"Forgot password\" link on the login page " +
				"to get a reset email. Reset links expire after 30 minutes. After five failed " +
				"attempts the account locks for 15 minutes; an owner can unlock it immediately " +
				"from Settings > Team.",
			Category: "account",
			Priority: 8,
		},
		{
			Keywords: []string{"add truck", "fleet", "vehicle", "register truck"},
			Content: "Adding trucks to your fleet: go to Fleet > Vehicles > Add. Enter the " +
				"unit number, VIN, and plate. Trucks appear on the dispatch board immediately. " +
				"Starter plans are limited to 3 trucks; upgrade under Settings > Billing to add " +
				"more.",
			Category: "fleet",
			Priority: 7,
		},
		{
			Keywords: []string{"driver", "invite driver", "driver app", "carrier"},
			Content: "Drivers use the free HaulStack Driver app (iOS and Android). Invite a " +
				"driver from Fleet > Drivers > Invite; they receive a text with a download " +
				"link and are paired to your fleet automatically. Drivers only see loads " +
				"assigned to them.",
			Category: "fleet",
			Priority: 7,
		},
		{
			Keywords: []string{"create load", "load", "shipment", "post load", "assign load"},
			Content: "Creating a load: Dispatch > New Load. Add pickup and delivery stops, " +
				"set the rate, and assign a driver. The driver is notified in the app and the " +
				"load moves through Booked, In Transit, and Delivered automatically as stops " +
				"are completed.",
			Category: "dispatch",
			Priority: 8,
		},
		{
			Keywords: []string{"track", "tracking", "gps", "eta", "where is my truck", "location"},
			Content: "Live tracking: positions update every 30 seconds from the Driver app or " +
				"a connected ELD. The map view shows every active truck; click a load for its " +
				"ETA, which is recalculated with current traffic. Share a read-only tracking " +
				"link with brokers from the load page.",
			Category: "tracking",
			Priority: 9,
		},
		{
			Keywords: []string{"eld", "eld integration", "samsara", "motive", "connect eld"},
			Content: "HaulStack connects to Samsara, Motive, and Geotab ELDs. Go to Settings > " +
				"Integrations, pick your provider, and authorize with your provider login. " +
				"Once linked, hours-of-service and GPS data flow in automatically within a few " +
				"minutes.",
			Category: "integrations",
			Priority: 6,
		},
		{
			Keywords: []string{"api", "api key", "webhook", "developer", "rest api"},
			Content: "The HaulStack REST API is available on Fleet and Enterprise plans. " +
				"Create API keys under Settings > Developers. Webhooks can notify your systems " +
				"on load status changes, POD uploads, and invoice events. Full reference lives " +
				"at docs.haulstack.io/api.",
			Category: "integrations",
			Priority: 6,
		},
		{
			Keywords: []string{"invoice", "billing", "payment", "factoring", "quickbooks"},
			Content: "Invoicing: generate an invoice from any delivered load with one click. " +
				"Invoices pull the rate, accessorials, and attached POD. Connect QuickBooks " +
				"under Settings > Integrations to sync invoices and payments; factoring " +
				"exports are available as batch CSV.",
			Category: "billing",
			Priority: 7,
		},
		{
			Keywords: []string{"export", "csv", "download data", "report"},
			Content: "Exporting data: every table view (loads, invoices, trucks, drivers) has " +
				"an Export button that produces CSV. Scheduled weekly exports to email or SFTP " +
				"can be configured under Settings > Reports on Fleet and Enterprise plans.",
			Category: "data",
			Priority: 5,
		},
		{
			Keywords: []string{"delete account", "cancel subscription", "downgrade", "close account"},
			Content: "Canceling or downgrading: Settings > Billing > Change Plan. Downgrades " +
				"take effect at the end of the current billing period and nothing is charged " +
				"after that. Account deletion is permanent after a 30-day grace window; " +
				"export your data first.",
			Category: "billing",
			Priority: 5,
		},
		{
			Keywords: []string{"error", "not working", "crash", "slow", "troubleshoot"},
			Content: "Troubleshooting basics: check status.haulstack.io for ongoing " +
				"incidents. For app issues, make sure the Driver app is up to date and has " +
				"location permission set to Always. If the dashboard misbehaves, a hard " +
				"refresh (Ctrl+Shift+R) clears most stale-state problems.",
			Category: "troubleshooting",
			Priority: 6,
		},
		{
			Keywords: []string{"secure", "security", "encryption", "gdpr", "soc2", "data privacy"},
			Content: "Security at HaulStack: all traffic is TLS 1.2+, data is encrypted at " +
				"rest, and we are SOC 2 Type II certified. GDPR data-processing agreements are " +
				"available on request. Enterprise plans support SAML SSO and SCIM " +
				"provisioning.",
			Category: "security",
			Priority: 4,
		},
		{
			Keywords: []string{"contact", "support", "human", "talk to someone", "escalate"},
			Content: "Reaching a human: email support@haulstack.io or use the in-app chat " +
				"(weekdays 8am-8pm ET). Enterprise customers have a dedicated Slack channel " +
				"and a 4-hour response SLA. Include your fleet name and a load number if the " +
				"question is about a specific shipment.",
			Category: "support",
			Priority: 10,
		},
		{
			Keywords: []string{"notification", "alerts", "sms", "email alerts"},
			Content: "Notifications: configure per-user alerts under Settings > " +
				"Notifications. Dispatchers typically enable SMS for load exceptions " +
				"(late pickup, detention, breakdown) and email digests for everything else. " +
				"Drivers manage their own alerts in the app.",
			Category: "account",
			Priority: 4,
		},
		{
			Keywords: []string{"detention", "accessorial", "lumper", "extra charges"},
			Content: "Accessorial charges: add detention, lumper fees, or layover to a load " +
				"from the load page before invoicing. Detention timers start automatically " +
				"when a driver is at a stop past the free window configured under Settings > " +
				"Dispatch.",
			Category: "dispatch",
			Priority: 4,
		},
	}
}
