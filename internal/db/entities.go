package db

type (
	GroupSettings struct {
		ChatID          int64   `db:"chat_id"`
		Antilink        bool    `db:"antilink"`
		Antispam        bool    `db:"antispam"`
		WelcomeTemplate *string `db:"welcome_template"`
		GoodbyeTemplate *string `db:"goodbye_template"`
		RulesText       *string `db:"rules_text"`
	}

	Infraction struct {
		ChatID int64 `db:"chat_id"`
		UserID int64 `db:"user_id"`
		Count  int   `db:"count"`
	}

	FilterEntry struct {
		ChatID int64  `db:"chat_id"`
		Key    string `db:"key"`
		Reply  string `db:"reply"`
	}
)
