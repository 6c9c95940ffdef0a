package i18n

// Message keys. Each key is also the English text.
const (
	MsgTitle          = "Notifications"
	MsgUnread         = "%d unread"
	MsgPageOf         = "Page %d of %d"
	MsgLoading        = "Loading notifications..."
	MsgEmpty          = "No notifications yet"
	MsgEmptyHint      = "Comments, replies and reactions on your articles show up here."
	MsgAllRemoved     = "All notifications on this page were removed"
	MsgRefreshHint    = "Press r to refresh"
	MsgLoadFailed     = "Could not load notifications"
	MsgRetryHint      = "Press r to retry"
	MsgSignedOut      = "Not signed in. Run :login to add an API token."
	MsgSignedIn       = "Signed in"
	MsgLoggedOut      = "Signed out"
	MsgOpened         = "Opened %s"
	MsgOpenURL        = "Open %s"
	MsgOpenFailed     = "Could not open %s"
	MsgMarkedRead     = "Marked as read"
	MsgRemoved        = "Notification removed"
	MsgUnknownCommand = "Unknown command: %s"

	MsgKindComment  = "comment"
	MsgKindReply    = "reply"
	MsgKindReaction = "reaction"

	MsgKeyOpen     = "open"
	MsgKeyMarkRead = "mark read"
	MsgKeyRemove   = "remove"
	MsgKeyNext     = "next page"
	MsgKeyPrev     = "prev page"
	MsgKeyRefresh  = "refresh"
	MsgKeyCommand  = "command"
	MsgKeyHelp     = "help"
	MsgKeyQuit     = "quit"

	MsgTokenTitle       = "API token"
	MsgTokenDescription = "Paste the bearer token issued by the platform."
	MsgTokenRequired    = "token is required"
)

// burmese holds the Burmese catalog entries keyed by English text.
var burmese = map[string]string{
	MsgTitle:          "အသိပေးချက်များ",
	MsgUnread:         "မဖတ်ရသေး %d",
	MsgPageOf:         "စာမျက်နှာ %d / %d",
	MsgLoading:        "အသိပေးချက်များ ရယူနေသည်...",
	MsgEmpty:          "အသိပေးချက် မရှိသေးပါ",
	MsgEmptyHint:      "သင့်ဆောင်းပါးများပေါ်ရှိ မှတ်ချက်၊ ပြန်စာနှင့် တုံ့ပြန်မှုများ ဤနေရာတွင် ပေါ်လာမည်။",
	MsgAllRemoved:     "ဤစာမျက်နှာရှိ အသိပေးချက်အားလုံးကို ဖယ်ရှားပြီးပါပြီ",
	MsgRefreshHint:    "ပြန်လည်ရယူရန် r ကိုနှိပ်ပါ",
	MsgLoadFailed:     "အသိပေးချက်များကို ရယူ၍မရပါ",
	MsgRetryHint:      "ထပ်မံကြိုးစားရန် r ကိုနှိပ်ပါ",
	MsgSignedOut:      "အကောင့်ဝင်မထားပါ။ API token ထည့်ရန် :login ကို အသုံးပြုပါ။",
	MsgSignedIn:       "အကောင့်ဝင်ပြီးပါပြီ",
	MsgLoggedOut:      "အကောင့်မှ ထွက်ပြီးပါပြီ",
	MsgOpened:         "%s ကို ဖွင့်ပြီးပါပြီ",
	MsgOpenURL:        "%s ကို ဖွင့်ပါ",
	MsgOpenFailed:     "%s ကို ဖွင့်၍မရပါ",
	MsgMarkedRead:     "ဖတ်ပြီးအဖြစ် မှတ်ထားသည်",
	MsgRemoved:        "အသိပေးချက်ကို ဖယ်ရှားလိုက်သည်",
	MsgUnknownCommand: "မသိသော command: %s",

	MsgKindComment:  "မှတ်ချက်",
	MsgKindReply:    "ပြန်စာ",
	MsgKindReaction: "တုံ့ပြန်မှု",

	MsgKeyOpen:     "ဖွင့်ရန်",
	MsgKeyMarkRead: "ဖတ်ပြီး",
	MsgKeyRemove:   "ဖယ်ရှားရန်",
	MsgKeyNext:     "နောက်စာမျက်နှာ",
	MsgKeyPrev:     "ယခင်စာမျက်နှာ",
	MsgKeyRefresh:  "ပြန်လည်ရယူရန်",
	MsgKeyCommand:  "command",
	MsgKeyHelp:     "အကူအညီ",
	MsgKeyQuit:     "ထွက်ရန်",

	MsgTokenTitle:       "API token",
	MsgTokenDescription: "ပလက်ဖောင်းမှ ထုတ်ပေးသော bearer token ကို ထည့်ပါ။",
	MsgTokenRequired:    "token လိုအပ်သည်",
}
