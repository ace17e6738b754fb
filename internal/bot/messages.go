package bot

// =============================================================================
// General messages
// =============================================================================

const (
	MsgWelcome = `
		Hei! Kerro millaisen tuotteen haluat, niin suunnittelen sen sinulle.

		Esim. _kahvimuki jossa on kettu auringonlaskussa_

		/tuote <kuvaus> - luo tuote
		/kategoria <teksti> - näytä mihin kategoriaan teksti osuu
		/uusimmat - viimeksi luodut tuotteet`
	MsgStartPrompt    = "Kirjoita millaisen tuotteen haluat."
	MsgUnknownCommand = "Tuntematon komento. Katso /apua"
	MsgUnexpectedErr  = `Odottamaton virhe: %s`
)

// =============================================================================
// Product messages
// =============================================================================

const (
	MsgProductUsage      = "Käyttö: `/tuote <kuvaus>`"
	MsgGeneratingProduct = "Suunnitellaan tuotetta, tämä vie hetken..."
	MsgProductCaption    = `
		*%s*

		%s

		Hinta: %s
		Kategoria: %s`
	MsgNoCategory = "En löytänyt tuotteelle sopivaa kategoriaa. Kokeile esim. muki, t-paita tai juliste."
	MsgNoProducts = "Kategoriassa ei ole tällä hetkellä tulostettavia tuotteita."
	MsgNoLatest   = "Tuotteita ei ole vielä luotu."
	MsgLatestHead = "*Uusimmat tuotteet:*\n"
)

// =============================================================================
// Category messages
// =============================================================================

const (
	MsgCategoryUsage = "Käyttö: `/kategoria <teksti>`"
	MsgCategoryMatch = `
		Kategoria: *%s* (%d)
		Pisteet: %d
		Lähde: %s`
	MsgCategoryOverride = "Avainsana: `%s`"
	MsgCategoryNoMatch  = "Ei osumaa."
)

// =============================================================================
// Admin command messages
// =============================================================================

const (
	MsgAdminUsage           = "Käyttö:\n`/admin users add <user_id>`\n`/admin users remove <user_id>`\n`/admin users list`"
	MsgAdminUserAddUsage    = "Käyttö: `/admin users add <user_id>`"
	MsgAdminUserRemoveUsage = "Käyttö: `/admin users remove <user_id>`"
	MsgAdminUserInvalidID   = "Virheellinen käyttäjä-ID. Anna numero."
	MsgAdminUserAdded       = "✅ Käyttäjä `%d` lisätty."
	MsgAdminUserRemoved     = "🗑 Käyttäjä `%d` poistettu."
	MsgAdminNoUsers         = "Ei sallittuja käyttäjiä."
	MsgAdminAllowedUsers    = "*Sallitut käyttäjät:*\n"
)
