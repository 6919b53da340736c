package detector

var rolePrefixes = []string{
	"noreply", "no-reply", "info", "support", "admin", "contact",
	"webmaster", "postmaster", "newsletter", "mailer", "system", "alert",
	"notification", "automated", "bot", "service", "daemon",
}

var spamTools = []string{
	"xrumer", "senuke", "gsa", "scrapebox", "xevil", "captchabreaker",
	"massmailer", "bulkmailer", "spambot", "autobot",
}

// keyboardSequences are runs of adjacent keys on a QWERTY layout
var keyboardSequences = []string{
	"qwerty", "asdf", "zxcv", "qazwsx", "plmokn",
	"wert", "erty", "tyui", "yuio", "uiop",
	"sdfg", "dfgh", "fghj", "ghjk", "hjkl",
	"xcvb", "cvbn", "vbnm", "mnbv", "nbvc",
	"rtyu", "tyu", "yui", "uio", "iop",
	"fgh", "ghj", "hjk", "jkl", "kl",
}

// nameKeyboardSequences is the shorter list applied to first/last names
var nameKeyboardSequences = []string{"qwerty", "asdf", "zxcv", "qazwsx"}

var disposableDomains = toSet([]string{
	"mailinator.com", "tempmail.com", "10minutemail.com",
	"guerrillamail.com", "yopmail.com",
	"temp-mail.org", "throwaway.email", "maildrop.cc", "sharklasers.com",
	"guerrillamailblock.com", "pokemail.net", "spam4.me", "bccto.me",
	"chacuo.net", "dispostable.com", "fakeinbox.com", "hidemail.de",
	"mytrashmail.com", "no-spam.ws", "nospam.ze.tc", "nowmymail.com",
	"objectmail.com", "pookmail.com", "proxymail.eu", "rcpt.at",
	"safe-mail.net", "spamgourmet.com", "spamgourmet.net", "spamgourmet.org",
	"spamhole.com", "spamify.com", "spamthisplease.com", "tempail.com",
	"tempemail.com", "tempinbox.com", "tempmail.eu", "tempmailo.com",
	"tempmail2.com", "tempr.email", "trashmail.at", "trashmail.com",
	"trashmail.io", "trashmail.me", "trashmail.net", "wegwerfmail.de",
	"wegwerfmail.net", "wegwerfmail.org", "zehnminutenmail.de",
})

var suspiciousDomainKeywords = []string{"temp", "fake", "spam", "trash", "disposable", "throw"}

// commonFirstNames are frequent bases for generated names such as "johnxkq"
var commonFirstNames = []string{
	"john", "james", "robert", "michael", "william", "david", "richard",
	"charles", "joseph", "thomas", "christopher", "daniel", "paul", "mark",
	"donald", "george", "kenneth", "steven", "edward", "brian", "ronald",
	"anthony", "kevin", "jason", "matthew", "gary", "timothy", "jose",
	"larry", "jeffrey", "frank", "scott", "eric", "stephen", "andrew",
	"mary", "patricia", "jennifer", "linda", "elizabeth", "barbara",
	"susan", "jessica", "sarah", "karen", "nancy", "lisa", "betty",
	"helen", "sandra", "donna", "carol", "ruth", "sharon", "michelle",
	"laura", "kimberly", "deborah", "dorothy",
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// IsDisposableDomain reports whether domain is a known throwaway mail provider.
func IsDisposableDomain(domain string) bool {
	_, ok := disposableDomains[domain]
	return ok
}
