package bot

import (
	"strings"

	"github.com/go-telegram/bot/models"
)

// texts is one language's set of user-facing messages. welcomeFmt takes the
// HTML mention of the user; broadcastDone takes delivered, failed and blocked
// counts.
type texts struct {
	welcomeFmt     string
	help           string
	denied         string
	statsFmt       string
	storageError   string
	broadcastUsage string
	broadcastStart string
	broadcastDone  string
	processing     string
	downloading    string
	uploading      string
	extractFailed  string
}

var catalog = map[string]texts{
	"en": {
		welcomeFmt: "👋 Hello, %s!\n\n" +
			"I download Instagram reels, videos and photos. Send me a link and I will send the media back to you.\n\n" +
			"Use /help for more.",
		help: "Just send me a link to any public Instagram reel, video or photo.\n\n" +
			"👑 Owner commands:\n" +
			"/stats - show the number of users\n" +
			"/broadcast <message> - send a message to every user",
		denied:         "⛔ You are not allowed to use this command.",
		statsFmt:       "📊 Bot statistics\n\nUnique users: %d",
		storageError:   "⚠️ The user database is unavailable right now. Check the logs.",
		broadcastUsage: "⚠️ Usage: /broadcast <your message>",
		broadcastStart: "📢 Starting broadcast to %d users...",
		broadcastDone:  "✅ Broadcast finished!\n\nDelivered: %d\nFailed: %d (blocked the bot: %d)",
		processing:     "🔄 Processing your link, please wait...",
		downloading:    "📥 Downloading the content...",
		uploading:      "📤 Uploading to Telegram...",
		extractFailed: "❌ Something went wrong.\n\n" +
			"This can happen because:\n" +
			"- the account is private\n" +
			"- the link is wrong or the post was removed\n" +
			"- the content is not available in this country",
	},
	"hi": {
		welcomeFmt: "👋 नमस्ते, %s!\n\n" +
			"मैं एक इंस्टाग्राम डाउनलोडर बॉट हूँ। मुझे कोई भी रील, वीडियो या फोटो का लिंक भेजें और मैं उसे आपके लिए डाउनलोड कर दूँगा।\n\n" +
			"सहायता के लिए /help कमांड का उपयोग करें।",
		help: "बस मुझे किसी भी पब्लिक इंस्टाग्राम रील, वीडियो या फोटो का लिंक भेजें।\n\n" +
			"👑 मालिक के लिए कमांड:\n" +
			"/stats - कुल यूजर्स की संख्या देखें।\n" +
			"/broadcast <message> - सभी यूजर्स को संदेश भेजें।",
		denied:         "⛔ आप इस कमांड का उपयोग करने के लिए अधिकृत नहीं हैं।",
		statsFmt:       "📊 बॉट आँकड़े\n\nकुल यूनिक यूजर्स: %d",
		storageError:   "⚠️ यूजर डेटाबेस अभी उपलब्ध नहीं है।",
		broadcastUsage: "⚠️ उपयोग: /broadcast <आपका संदेश यहाँ>",
		broadcastStart: "📢 ब्रॉडकास्ट शुरू हो रहा है... %d यूजर्स को संदेश भेजा जाएगा।",
		broadcastDone:  "✅ ब्रॉडकास्ट पूरा हुआ!\n\nसफलतापूर्वक भेजा गया: %d\nविफल रहा: %d (बॉट ब्लॉक किया: %d)",
		processing:     "🔄 आपका लिंक प्रोसेस हो रहा है, कृपया प्रतीक्षा करें...",
		downloading:    "📥 कंटेंट डाउनलोड हो रहा है...",
		uploading:      "📤 टेलीग्राम पर अपलोड किया जा रहा है...",
		extractFailed: "❌ एक त्रुटि हुई।\n\n" +
			"यह हो सकता है क्योंकि:\n" +
			"- यह एक प्राइवेट अकाउंट है।\n" +
			"- लिंक गलत या हटा दिया गया है।\n" +
			"- यह कंटेंट इस देश में उपलब्ध नहीं है।",
	},
}

// textsFor picks the catalog entry for the user's Telegram language,
// falling back to the configured default and then to English.
func (h *Handler) textsFor(user *models.User) texts {
	if user != nil {
		lang := strings.ToLower(user.LanguageCode)
		if i := strings.IndexAny(lang, "-_"); i > 0 {
			lang = lang[:i]
		}
		if t, ok := catalog[lang]; ok {
			return t
		}
	}
	if t, ok := catalog[h.cfg.DefaultLanguage]; ok {
		return t
	}
	return catalog["en"]
}
