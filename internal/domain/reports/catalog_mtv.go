package reports

func (c *Catalog) registerMTVReports(mtv MTVRepository) {
	c.add(&Definition{
		Name:  "mtv-users",
		Title: "MTV Users",
		Columns: []Column{
			{Key: "userId", Label: "User ID", Value: text("id")},
			{Key: "name", Label: "Name", Value: textOrNA("name")},
			{Key: "phone", Label: "Phone", Value: text("phone")},
			{Key: "email", Label: "Email", Value: textOrNA("email")},
			{Key: "referralCode", Label: "Referral Code", Value: text("referral_code")},
			{Key: "status", Label: "Status", Value: text("status")},
			{Key: "registeredOn", Label: "Registered On", Value: date("created_at", LayoutDash, Maldives)},
		},
		Source: mtvSource{repo: mtv, dataset: MTVUsers},
	})

	c.add(&Definition{
		Name:  "mtv-referrals",
		Title: "MTV Referrals",
		Columns: []Column{
			{Key: "referralId", Label: "Referral ID", Value: text("id")},
			{Key: "referralCode", Label: "Referral Code", Value: text("referral_code")},
			{Key: "referrerName", Label: "Referrer Name", Value: textOrNA("referrer.name")},
			{Key: "referrerPhone", Label: "Referrer Phone", Value: text("referrer.phone")},
			{Key: "refereeName", Label: "Referee Name", Value: textOrNA("referee.name")},
			{Key: "refereePhone", Label: "Referee Phone", Value: text("referee.phone")},
			{Key: "status", Label: "Status", Value: text("status")},
			{Key: "rewardAmount", Label: "Reward Amount", Value: money("reward_amount")},
			{Key: "createdDate", Label: "Created Date", Value: date("created_at", LayoutDash, Maldives)},
		},
		Source: mtvSource{repo: mtv, dataset: MTVReferrals},
	})
}
