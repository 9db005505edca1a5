package categorize

import (
	"github.com/spec-kit/ticket-dataset/internal/domain"
)

// Signal weights.
const (
	WeightHit = 1.0
	WeightAdd = 1.5
	WeightNeg = -1.0
)

// Rule prefers one category when any trigger appears in the text and
// demotes others by half the boost. A forced rule additionally keeps every
// other category strictly below the preferred one.
type Rule struct {
	Triggers []string
	Prefer   domain.Category
	Demote   []domain.Category
	Boost    float64
	Force    bool
}

// Tables is the static categorization configuration.
type Tables struct {
	Base  map[domain.Category][]string
	Add   map[domain.Category][]string
	Neg   map[domain.Category][]string
	Rules []Rule
}

// PriorityOrder breaks ties between equal scores.
var PriorityOrder = [domain.NumCategories]domain.Category{
	domain.CategoryACC,
	domain.CategoryMAIL,
	domain.CategoryNET,
	domain.CategoryHW,
	domain.CategorySW,
	domain.CategoryAPP,
	domain.CategoryPOL,
	domain.CategorySRV,
}

// DefaultTables returns the bilingual (ES/EN) keyword tables shipped with
// the normalizer.
func DefaultTables() Tables {
	return Tables{
		Base: map[domain.Category][]string{
			domain.CategoryACC: {
				"login", "inicio de sesión", "iniciar sesion", "autenticación", "autenticacion", "sso", "mfa", "2fa",
				"contraseña", "contrasena", "restablecer contraseña", "cambiar contraseña", "olvidé la contraseña", "olvide la contrasena",
				"cuenta bloqueada", "desbloquear cuenta", "permiso denegado", "acceso denegado",
				"credentials", "credenciales", "password", "reset password", "forgot password", "account locked", "access denied",
			},
			domain.CategorySW: {
				"instalar", "instalación", "instalacion", "reinstalar", "actualización", "actualizacion", "parche", "licencia", "serial",
				"driver", "software", "aplicación de escritorio", "aplicacion de escritorio", "desinstalar", "update", "patch",
				"license", "product key", "desktop app", "uninstall", "upgrade", "downgrade", "bug", "error", "crash",
			},
			domain.CategoryHW: {
				"hardware", "portátil", "portatil", "laptop", "equipo", "pc", "teclado", "ratón", "raton", "mouse", "monitor", "pantalla",
				"impresora", "scanner", "escáner", "escaner", "webcam", "auriculares", "ssd", "disco", "batería", "bateria",
				"cargador", "charger", "dock", "docking station", "keyboard", "display", "printer", "headset", "battery",
			},
			domain.CategoryNET: {
				"vpn", "wi fi", "wifi", "red", "conexión", "conexion", "conectividad", "lan", "wan", "proxy", "dns", "ip", "gateway", "ping",
				"latencia", "pérdida de paquetes", "perdida de paquetes", "cable de red", "ethernet", "switch", "router",
				"network", "connection", "connectivity", "packet loss", "no internet", "high latency",
			},
			domain.CategoryMAIL: {
				"correo", "email", "buzón", "buzon", "outlook", "exchange", "smtp", "imap", "pop3", "calendario", "meeting", "invite",
				"firma", "signature", "alias", "mailbox", "ndr", "bounce", "delivery failed", "o365", "microsoft 365",
			},
			domain.CategoryAPP: {
				"sap", "erp", "crm", "bpm", "salesforce", "dynamics", "navision", "sage", "jira", "confluence",
				"power bi", "sharepoint", "servicenow", "oracle", "oracle database", "oracle db", "workday", "netsuite", "odoo", "sccm", "webex",
			},
			domain.CategorySRV: {
				"alta", "baja", "solicito", "solicitud", "petición", "peticion", "permiso de acceso", "como hago", "manual", "procedimiento",
				"crear usuario", "dar de alta", "cambio planificado", "aprobar", "provisionar", "provision", "request",
				"new user", "onboarding", "offboarding", "how to", "grant access", "please provide", "standard change", "service request", "access to",
			},
			domain.CategoryPOL: {
				"antivirus", "phishing", "malware", "ransomware", "cifrado", "encriptado", "bloqueado por política", "bloqueado por politica",
				"dlp", "firewall", "política de seguridad", "politica de seguridad", "seguridad", "quarantine", "blocked for security",
				"encryption", "security policy", "microsoft defender", "windows defender", "endpoint protection", "network policy", "policy",
			},
		},
		Add: map[domain.Category][]string{
			domain.CategoryACC:  {"active directory", "otp", "one time code", "codigo mfa", "codigo otp", "failed login", "invalid credentials"},
			domain.CategoryMAIL: {"shared mailbox", "distribution list", "delegation", "ndr", "delivery failed", "auto-reply", "out of office"},
			domain.CategoryNET:  {"ip address", "dns server", "proxy auth", "802.1x", "ssid", "packet drop", "routing", "no internet access"},
			domain.CategoryAPP:  {"sap gui", "s 4hana", "salesforce lightning", "dynamics 365", "sharepoint site", "jira project", "power bi dataset", "webex app", "configuration manager"},
			domain.CategoryPOL:  {"blocked by policy", "security incident", "threat detected", "quarantined", "bitlocker", "filevault"},
			domain.CategoryHW:   {"battery not charging", "ac adapter", "power adapter", "keyboard not working", "screen flicker", "paper jam"},
			domain.CategorySW:   {"deprecated", "obsolete feature", "missing license", "product activation", "runtime error", "dll"},
			domain.CategorySRV:  {"grant access to", "please grant", "need access", "how do i", "procedure steps"},
		},
		Neg: map[domain.Category][]string{
			domain.CategoryACC:  {"outlook", "imap", "smtp"},
			domain.CategoryMAIL: {"vpn", "dns", "proxy"},
			domain.CategoryNET:  {"outlook", "mailbox"},
			domain.CategoryAPP:  {"printer", "monitor", "battery"},
			domain.CategoryHW:   {"oracle", "sharepoint", "jira"},
			domain.CategorySW:   {"oracle", "sccm", "webex", "jira"},
			domain.CategoryPOL:  {"printer", "monitor"},
		},
		Rules: []Rule{
			{
				Triggers: []string{"outlook", "mailbox", "imap", "smtp", "email"},
				Prefer:   domain.CategoryMAIL,
				Demote:   []domain.Category{domain.CategoryACC},
				Boost:    0.5,
			},
			{
				Triggers: []string{"oracle", "oracle database", "sharepoint", "jira", "confluence", "power bi", "servicenow", "sccm", "webex"},
				Prefer:   domain.CategoryAPP,
				Demote:   []domain.Category{domain.CategorySW, domain.CategoryHW},
				Boost:    0.7,
			},
			{
				Triggers: []string{"defender", "endpoint protection", "security policy", "network policy", "blocked by policy", "quarantine"},
				Prefer:   domain.CategoryPOL,
				Demote:   []domain.Category{domain.CategoryNET, domain.CategorySW},
				Boost:    0.7,
			},
			{
				Triggers: []string{"ip address", "dns", "vpn", "proxy", "router", "switch", "packet loss", "latency"},
				Prefer:   domain.CategoryNET,
				Demote:   []domain.Category{domain.CategoryMAIL, domain.CategorySRV},
				Boost:    0.5,
			},
		},
	}
}
