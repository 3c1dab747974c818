package test

import (
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/threshold-ecdsa/pkg/paillier"
)

// safePrimePairs are 1024 bit safe primes p, q ≡ 3 (mod 4), such that N = p⋅q has exactly 2048 bits.
// Generating them takes several seconds, so tests use these instead.
var safePrimePairs = [][2]string{
	{
		"CD0C9B629CC5143CE95049D47FE5953BB1E2CA54E2F59CD3C7F26E26FB08974D48882F80A9F0DE14355CC9787DA1AD59062CD9AB4E3656A14C02436B510DC8CDC8B06AFD557EC5A752FED7B884DFA87C5278F83CDF33F70BA8DB1F3021C2C60D49507326C246D5A6FD82150F86429B34F161379586DE5EFF080CE5FB8E502D07",
		"E736D918CEB2E1FE462E98662107286DA8562EF94F0E277CBDA81A51FC59BED55709877A82D90C28E4908411921C4765CC1BD72365AFD589876C115BA7CDEA8CDE62C8A444C644F175ED1033CF673B744D828A9E8382AF38B8B954E12B0954D13F3257E2DEB86F16427FCFBFBB962B3EF709CCB9B6BAB1342028ED03CCBC2757",
	},
	{
		"E745B41DDF563EA102F7C6FB25FFA5BC372FC2BC5D3A0BEF3778858A84C30C39ABA3EE9BC00DA222D876A6E49A8E1F4783763BD3A0DB0E76811EACAEB7AD4C5823EB27339F4BB2C534F9256AA3EF57953E3F01933495B0FDB9DC1C3D542920D1C9CEB1662EEF540F86E4A51F02449B230DEA99443802808F3C4565B690E83C0F",
		"9AC92021DBE1980740C1D30518D006887B340F16DDB9A1C98EE8461205A612349CBF00BC94927EDC9F630C8293AEB5005830B9472F634C700996B52FA4BB5394B8B8CDEEE9749F468809ECE50B970A57B9882FFE7EA19E16A8EB8D7D3CFFBE9F7F8BD3C67483577287DE48808B7F81018A342F708CB51AC5EC4D38FA1128C5F7",
	},
	{
		"CBBA5B191C3E3AE7E75F557048F00C5C6078EAB0F7E80B2FD87DDA1C24947973130570EEAC5D23D32902D2050AF86386F15F48391322698BA1751AB6495210F6A7762C8CEC9D53472805386BE3970DE8C8A941E2D09F6A7C3D94D6DA2CBB0CDA8B07074424F9AE4D6227BF4F3EB0A1632BEA9536247C5C3A09A6F58803F959BF",
		"AA4438822FE57A4A3AFE7B85C386FE42972EFF8DF496558940FB7E93027C0EF603205C98C5EFC6A983AA055CA0D66048D9F29DA8CD5D2DF4DA8B5472018AB2131831154DCEC2C66C11182CC0AECE80F2106FC20D57AE48CAF7F7552F8E9422E6B905E46CBB503A7F8D1A2DC589C439AB9C1B383D844CF4F4079822D73EA12FEF",
	},
	{
		"AEBBB8A4C45A27030A71D833BAAF9808BA7DD50A93CFECBA7AEF85CD4E3BE37CAEB62DF45888CFC4A25D4C92B6C703BCFC56D587D2EC5252B5B067CECF283C0C47F69CB1A4B38941551C5609726A69A27F840ACDC114802A8168EF9085B68FBE98EA22B66FE6337D7AA25FF713006967AE53D9D56D427E6B90A8DE3CD9074287",
		"C13F0D77498AEC17F9B1FFB7091AA25863A813BBCFD34CFFC33FE97809174D07E54863C3A5769C81FA2B8DA6CB5F878B8797B29AB696259C6D08C18AC0CB7EB44D3C8D056D409CEEFE0434A7CE0608FE75A2A52FB6709FFFC344E9C0ACBCBD9E8CBC8528B19C93FE3E246F4E7365CC29125837C64549954B54E75CD38F0F25B7",
	},
	{
		"AF01D28FB972016A8F6909E575DD66DFEDD091B9D0E2F83914014F58784F550335DF4115610EB5E1674BF6BE39D79027BBE2D567F03035255A276B7AB0F94240E991ED76CBA32DEDBF8D76ECE4FF3092025B881A96A874B983EAD3914632D2F0A073C8919E6F2E1724712E9BACF952D045F4854BB74AFFA6C2EB353F6ADF3AEF",
		"DCDFF41B54C6CA78AE290C6CC10169DC0137DBE06B7DC75DA1DB00E38E4BA408BF5584D581B9049BB019A74B401079EF7BA2C07173853866B4D023352501AA14A38971B95AE1E07D6537B5658EEE3A29C0DC9B430BD4DB0A86B330B7D05933C8BA144DF1D3D2F808EFCFFF1F21061D86E9842A6E54741A34274F6C1238447EDF",
	},
	{
		"9303BD5EF102658BE1106DAB964C6439A1C8230E9B53C27659AC379CCA3598FB5F91937362AA4F53A30A7F4D38C237E40812672F65A4E5A9CA2D9B74C4CE89DD6CC045C595B8849090F2AEB1915FCE39D65697ED25C48F65FD2133429196BBAEE42028AE3A1D30F068E48E91475CFA8EAC05C938168C1A1E78469B566139A847",
		"EE425882BFE17A72CCD8F13A2F99D6DD2C2C08F7F02616875E2A6590EF423E72E864C238BFDC58035332AC37E4F10095FEBF99E7FBE71B1858B56ABA6460E34D53A7750BEF444D25B9EDB5CBC9B2EFC0CD1CC8FEA101ED58B1B2CE1CABEC5C66BF04EB83C40B746ED3171F0F5C3254F8C23AD756ACACC0F1897675D6DDF5E237",
	},
}

var (
	paillierSecrets    []*paillier.SecretKey
	paillierSecretOnce sync.Once
)

// NumPaillierFixtures is the number of distinct Paillier keys available from PaillierSecret.
var NumPaillierFixtures = len(safePrimePairs)

// PaillierSecret returns the i-th pre-generated Paillier secret key.
// Keys are shared between callers and must not be modified.
func PaillierSecret(i int) *paillier.SecretKey {
	paillierSecretOnce.Do(func() {
		paillierSecrets = make([]*paillier.SecretKey, len(safePrimePairs))
		for j, pair := range safePrimePairs {
			paillierSecrets[j] = paillier.NewSecretKeyFromPrimes(mustNat(pair[0]), mustNat(pair[1]))
		}
	})
	return paillierSecrets[i%len(paillierSecrets)]
}

// SafePrimes returns the i-th pair of pre-generated safe primes.
func SafePrimes(i int) (p, q *saferith.Nat) {
	pair := safePrimePairs[i%len(safePrimePairs)]
	return mustNat(pair[0]), mustNat(pair[1])
}

func mustNat(s string) *saferith.Nat {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(fmt.Sprintf("test: invalid prime fixture: %v", err))
	}
	return new(saferith.Nat).SetBytes(b)
}
