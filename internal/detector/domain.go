package detector

func detectDisposableDomain(in *input) Finding {
	if IsDisposableDomain(in.domain) {
		return hit(50, "Disposable email domain")
	}
	return Finding{}
}

func detectSuspiciousDomain(in *input) Finding {
	if containsAny(in.domain, suspiciousDomainKeywords) {
		return hit(30, "Suspicious domain keywords")
	}
	return Finding{}
}
