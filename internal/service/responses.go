package service

import (
	"fmt"

	"parksmart/internal/model"
)

// Quick-action keys understood by the assistant
const (
	ActionFindParking       = "find_parking"
	ActionCheckPrices       = "check_prices"
	ActionNearbyParking     = "nearby_parking"
	ActionBookTwinCenter    = "book_twin_center"
	ActionDirectionsMaarif  = "directions_maarif"
	ActionBookMoroccoMall   = "book_morocco_mall"
	ActionBookCorniche      = "book_corniche"
	ActionBookCasaPort      = "book_casa_port"
	ActionBookHassanMosque  = "book_hassan_mosque"
	ActionComparePrices     = "compare_prices"
	ActionStartBooking      = "start_booking"
	ActionCheckAvailability = "check_availability"
)

// countPlaceholder is replaced with a live catalog count in replies that report one
const countPlaceholder = "{count}"

// localized holds one string per supported language
type localized map[model.Language]string

// actionDef describes a quick action. Label is used verbatim when LabelKey is empty.
type actionDef struct {
	LabelKey string
	Label    string
	Action   string
	Icon     string
}

type responseTemplate struct {
	Text    localized
	Actions []actionDef
}

// actionLabels are the translated button captions
var actionLabels = map[string]localized{
	"find_parking": {
		model.LangEnglish: "Find Parking",
		model.LangFrench:  "Trouver Parking",
		model.LangArabic:  "البحث عن موقف",
	},
	"check_prices": {
		model.LangEnglish: "Check Prices",
		model.LangFrench:  "Vérifier Prix",
		model.LangArabic:  "فحص الأسعار",
	},
	"nearby_parking": {
		model.LangEnglish: "Nearby Parking",
		model.LangFrench:  "Parking Proche",
		model.LangArabic:  "مواقف قريبة",
	},
	"get_directions": {
		model.LangEnglish: "Get Directions",
		model.LangFrench:  "Itinéraire",
		model.LangArabic:  "الاتجاهات",
	},
	"book_now": {
		model.LangEnglish: "Book Now",
		model.LangFrench:  "Réserver",
		model.LangArabic:  "احجز الآن",
	},
	"view_availability": {
		model.LangEnglish: "View Availability",
		model.LangFrench:  "Voir Disponibilité",
		model.LangArabic:  "عرض التوفر",
	},
}

// canonicalTexts is what a quick action "types" on the user's behalf
var canonicalTexts = map[string]localized{
	ActionFindParking: {
		model.LangEnglish: "Show me available parking spots",
		model.LangFrench:  "Montrez-moi les places de parking disponibles",
		model.LangArabic:  "أظهر لي مواقف السيارات المتاحة",
	},
	ActionCheckPrices: {
		model.LangEnglish: "What are the parking prices?",
		model.LangFrench:  "Quels sont les prix de stationnement ?",
		model.LangArabic:  "ما هي أسعار مواقف السيارات؟",
	},
	ActionNearbyParking: {
		model.LangEnglish: "Find parking near me",
		model.LangFrench:  "Trouvez un parking près de moi",
		model.LangArabic:  "ابحث عن موقف سيارات بالقرب مني",
	},
}

var genericActions = []actionDef{
	{LabelKey: "find_parking", Action: ActionFindParking, Icon: "🚗"},
	{LabelKey: "check_prices", Action: ActionCheckPrices, Icon: "💰"},
	{LabelKey: "nearby_parking", Action: ActionNearbyParking, Icon: "📍"},
}

var responseTable = map[model.IntentKey]responseTemplate{
	model.IntentWelcome: {
		Text: localized{
			model.LangEnglish: "👋 Hello! I'm your ParkSmart assistant. I can help you find parking spots in Casablanca, check prices, and guide you through booking. What would you like to know?",
			model.LangFrench:  "👋 Bonjour ! Je suis votre assistant ParkSmart. Je peux vous aider à trouver des places de parking à Casablanca, vérifier les prix et vous guider dans la réservation. Que souhaitez-vous savoir ?",
			model.LangArabic:  "👋 مرحباً! أنا مساعد بارك سمارت. يمكنني مساعدتك في العثور على مواقف السيارات في الدار البيضاء، والتحقق من الأسعار، وإرشادك خلال الحجز. ماذا تريد أن تعرف؟",
		},
		Actions: genericActions,
	},
	model.IntentMaarif: {
		Text: localized{
			model.LangEnglish: "🏢 I found {count} parking spots in Maarif district. The Twin Center Parking (30 MAD/hour) and Maarif District Parking (20 MAD/hour) are popular choices. Twin Center offers premium services with valet parking.",
			model.LangFrench:  "🏢 J'ai trouvé {count} places de parking dans le quartier Maarif. Le parking Twin Center (30 MAD/heure) et le parking du quartier Maarif (20 MAD/heure) sont des choix populaires. Twin Center offre des services premium avec voiturier.",
			model.LangArabic:  "🏢 وجدت {count} مواقف سيارات في حي المعاريف. موقف توين سنتر (30 درهم/ساعة) وموقف حي المعاريف (20 درهم/ساعة) خيارات شائعة. يوفر توين سنتر خدمات مميزة مع خدمة الصف.",
		},
		Actions: []actionDef{
			{Label: "Twin Center", Action: ActionBookTwinCenter, Icon: "🏢"},
			{LabelKey: "get_directions", Action: ActionDirectionsMaarif, Icon: "🧭"},
		},
	},
	model.IntentAinDiab: {
		Text: localized{
			model.LangEnglish: "🏖️ Ain Diab has great parking options! Morocco Mall (25 MAD/hour) offers covered parking with 340 available spots. Corniche Parking (18 MAD/hour) is perfect for beach access. Both have excellent ratings!",
			model.LangFrench:  "🏖️ Ain Diab a d'excellentes options de parking ! Morocco Mall (25 MAD/heure) offre un parking couvert avec 340 places disponibles. Le parking Corniche (18 MAD/heure) est parfait pour l'accès à la plage. Les deux ont d'excellentes notes !",
			model.LangArabic:  "🏖️ عين الذياب لديها خيارات رائعة لمواقف السيارات! مول المغرب (25 درهم/ساعة) يوفر موقف مغطى مع 340 مكان متاح. موقف الكورنيش (18 درهم/ساعة) مثالي للوصول إلى الشاطئ. كلاهما له تقييمات ممتازة!",
		},
		Actions: []actionDef{
			{Label: "Morocco Mall", Action: ActionBookMoroccoMall, Icon: "🛍️"},
			{Label: "Corniche", Action: ActionBookCorniche, Icon: "🏖️"},
		},
	},
	model.IntentBudget: {
		Text: localized{
			model.LangEnglish: "💰 Here are the most affordable options: Casa Port Station (12 MAD/hour) - great for train access, Hassan II Mosque (15 MAD/hour) - tourist area with security. Both offer excellent value!",
			model.LangFrench:  "💰 Voici les options les plus abordables : Gare Casa Port (12 MAD/heure) - excellent pour l'accès au train, Mosquée Hassan II (15 MAD/heure) - zone touristique avec sécurité. Les deux offrent un excellent rapport qualité-prix !",
			model.LangArabic:  "💰 إليك الخيارات الأكثر اقتصادية: محطة كازا بورت (12 درهم/ساعة) - ممتاز للوصول للقطار، مسجد الحسن الثاني (15 درهم/ساعة) - منطقة سياحية مع أمان. كلاهما يقدم قيمة ممتازة!",
		},
		Actions: []actionDef{
			{Label: "Casa Port", Action: ActionBookCasaPort, Icon: "🚂"},
			{Label: "Hassan II", Action: ActionBookHassanMosque, Icon: "🕌"},
		},
	},
	model.IntentPrice: {
		Text: localized{
			model.LangEnglish: "💳 Parking prices in Casablanca range from 12-30 MAD per hour. Budget: Casa Port (12 MAD), Mid-range: Hassan II Mosque (15 MAD), Corniche (18 MAD), Premium: Morocco Mall (25 MAD), Twin Center (30 MAD). All accept Moroccan cards and international payments.",
			model.LangFrench:  "💳 Les prix de stationnement à Casablanca vont de 12 à 30 MAD par heure. Budget : Casa Port (12 MAD), Milieu de gamme : Mosquée Hassan II (15 MAD), Corniche (18 MAD), Premium : Morocco Mall (25 MAD), Twin Center (30 MAD). Tous acceptent les cartes marocaines et les paiements internationaux.",
			model.LangArabic:  "💳 أسعار مواقف السيارات في الدار البيضاء تتراوح من 12-30 درهم في الساعة. اقتصادي: كازا بورت (12 درهم)، متوسط: مسجد الحسن الثاني (15 درهم)، الكورنيش (18 درهم)، مميز: مول المغرب (25 درهم)، توين سنتر (30 درهم). جميعها تقبل البطاقات المغربية والمدفوعات الدولية.",
		},
		Actions: []actionDef{
			{LabelKey: "find_parking", Action: ActionFindParking, Icon: "🔍"},
			{LabelKey: "check_prices", Action: ActionComparePrices, Icon: "📊"},
		},
	},
	model.IntentBooking: {
		Text: localized{
			model.LangEnglish: "📅 Booking is easy! 1) Select your preferred parking spot 2) Choose date and time 3) Enter your vehicle number (Morocco format) 4) Confirm payment. You'll get a QR code for entry. Arrive within 15 minutes of your booking time.",
			model.LangFrench:  "📅 La réservation est facile ! 1) Sélectionnez votre place de parking préférée 2) Choisissez la date et l'heure 3) Entrez votre numéro de véhicule (format Maroc) 4) Confirmez le paiement. Vous recevrez un code QR pour l'entrée. Arrivez dans les 15 minutes de votre heure de réservation.",
			model.LangArabic:  "📅 الحجز سهل! 1) اختر موقف السيارات المفضل لديك 2) اختر التاريخ والوقت 3) أدخل رقم مركبتك (تنسيق المغرب) 4) أكد الدفع. ستحصل على رمز QR للدخول. وصل خلال 15 دقيقة من وقت حجزك.",
		},
		Actions: []actionDef{
			{LabelKey: "book_now", Action: ActionStartBooking, Icon: "🚗"},
			{LabelKey: "view_availability", Action: ActionCheckAvailability, Icon: "📊"},
		},
	},
	model.IntentAvailability: {
		Text: localized{
			model.LangEnglish: "✅ Currently {count} parking spots are available! Morocco Mall has the highest availability (85% predicted), followed by Twin Center (75%). Real-time updates ensure accurate information.",
			model.LangFrench:  "✅ Actuellement {count} places de parking sont disponibles ! Morocco Mall a la plus haute disponibilité (85% prédit), suivi de Twin Center (75%). Les mises à jour en temps réel garantissent des informations précises.",
			model.LangArabic:  "✅ حالياً {count} مواقف سيارات متاحة! مول المغرب لديه أعلى توفر (85% متوقع)، يليه توين سنتر (75%). التحديثات الفورية تضمن معلومات دقيقة.",
		},
		Actions: []actionDef{
			{Label: "Morocco Mall", Action: ActionBookMoroccoMall, Icon: "🛍️"},
			{Label: "Twin Center", Action: ActionBookTwinCenter, Icon: "🏢"},
		},
	},
	model.IntentDefault: {
		Text: localized{
			model.LangEnglish: "🤖 I can help you with parking in Casablanca! Try asking about specific areas like \"Maarif\" or \"Ain Diab\", or ask about prices, availability, or booking steps. What would you like to know?",
			model.LangFrench:  "🤖 Je peux vous aider avec le stationnement à Casablanca ! Essayez de demander des zones spécifiques comme \"Maarif\" ou \"Ain Diab\", ou demandez des prix, la disponibilité ou les étapes de réservation. Que souhaitez-vous savoir ?",
			model.LangArabic:  "🤖 يمكنني مساعدتك في مواقف السيارات في الدار البيضاء! جرب السؤال عن مناطق محددة مثل \"المعاريف\" أو \"عين الذياب\"، أو اسأل عن الأسعار أو التوفر أو خطوات الحجز. ماذا تريد أن تعرف؟",
		},
		Actions: []actionDef{
			{LabelKey: "find_parking", Action: ActionFindParking, Icon: "🔍"},
			{LabelKey: "check_prices", Action: ActionCheckPrices, Icon: "💰"},
			{LabelKey: "nearby_parking", Action: ActionNearbyParking, Icon: "📍"},
		},
	},
}

// allIntents lists every intent the resolver can produce
var allIntents = []model.IntentKey{
	model.IntentWelcome,
	model.IntentMaarif,
	model.IntentAinDiab,
	model.IntentBudget,
	model.IntentPrice,
	model.IntentBooking,
	model.IntentAvailability,
	model.IntentDefault,
}

func init() {
	if err := validateResponseTable(); err != nil {
		panic(err)
	}
}

// validateResponseTable checks that every intent, label and canonical text has all languages
func validateResponseTable() error {
	for _, intent := range allIntents {
		tmpl, ok := responseTable[intent]
		if !ok {
			return fmt.Errorf("response table: no entry for intent %q", intent)
		}
		if err := checkLocalized(tmpl.Text); err != nil {
			return fmt.Errorf("response table: intent %q: %w", intent, err)
		}
		for _, a := range tmpl.Actions {
			if a.Action == "" {
				return fmt.Errorf("response table: intent %q has an action without key", intent)
			}
			if a.LabelKey == "" {
				if a.Label == "" {
					return fmt.Errorf("response table: intent %q action %q has no label", intent, a.Action)
				}
				continue
			}
			labels, ok := actionLabels[a.LabelKey]
			if !ok {
				return fmt.Errorf("response table: unknown label key %q", a.LabelKey)
			}
			if err := checkLocalized(labels); err != nil {
				return fmt.Errorf("response table: label %q: %w", a.LabelKey, err)
			}
		}
	}
	for action, texts := range canonicalTexts {
		if err := checkLocalized(texts); err != nil {
			return fmt.Errorf("canonical text %q: %w", action, err)
		}
	}
	return nil
}

func checkLocalized(l localized) error {
	for _, lang := range model.Languages {
		if l[lang] == "" {
			return fmt.Errorf("missing %s text", lang)
		}
	}
	return nil
}

// quickActions renders the template's actions in lang
func (t responseTemplate) quickActions(lang model.Language) []model.QuickAction {
	out := make([]model.QuickAction, 0, len(t.Actions))
	for _, a := range t.Actions {
		label := a.Label
		if a.LabelKey != "" {
			label = actionLabels[a.LabelKey][lang]
		}
		out = append(out, model.QuickAction{Label: label, Action: a.Action, Icon: a.Icon})
	}
	return out
}
