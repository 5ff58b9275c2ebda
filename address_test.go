package btctransfer_test

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	. "github.com/renproject/btctransfer"
	"github.com/renproject/btctransfer/errors"
)

var _ = Describe("Addresses and keys", func() {
	key := newTestKey(0x11)

	Context("when validating addresses", func() {
		It("should accept testnet P2PKH and P2WPKH addresses", func() {
			Expect(ValidateAddress(key.p2pkh.EncodeAddress(), testNet)).To(Succeed())
			Expect(ValidateAddress(key.p2wpkh.EncodeAddress(), testNet)).To(Succeed())
			Expect(IsValidAddress(key.p2pkh.EncodeAddress(), testNet)).To(BeTrue())
		})

		It("should reject mainnet addresses", func() {
			err := ValidateAddress("1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", testNet)
			Expect(errors.Is(err, errors.ErrValidationFailed)).To(BeTrue())
		})

		It("should reject malformed addresses", func() {
			for _, addr := range []string{"", "not-an-address", key.p2pkh.EncodeAddress() + "x"} {
				Expect(IsValidAddress(addr, testNet)).To(BeFalse(), addr)
			}
		})

		It("should reject bare public keys", func() {
			pubKey, err := btcutil.NewAddressPubKey(key.wif.SerializePubKey(), testNet)
			Expect(err).NotTo(HaveOccurred())
			Expect(IsValidAddress(pubKey.String(), testNet)).To(BeFalse())
		})
	})

	Context("when validating private keys", func() {
		It("should accept a testnet WIF key", func() {
			Expect(ValidatePrivateKey(key.wif.String(), testNet)).To(Succeed())
		})

		It("should reject a key for another network without echoing it", func() {
			wif, err := btcutil.NewWIF(key.wif.PrivKey, &chaincfg.MainNetParams, true)
			Expect(err).NotTo(HaveOccurred())
			err = ValidatePrivateKey(wif.String(), testNet)
			Expect(errors.Is(err, errors.ErrValidationFailed)).To(BeTrue())
			Expect(err.Error()).NotTo(ContainSubstring(wif.String()))
		})

		It("should reject garbage", func() {
			Expect(IsValidPrivateKey("", testNet)).To(BeFalse())
			Expect(IsValidPrivateKey("cNotAKey", testNet)).To(BeFalse())
		})

		It("should derive the P2PKH address of a key", func() {
			addr, err := AddressFromWIF(key.wif, testNet)
			Expect(err).NotTo(HaveOccurred())
			Expect(addr.EncodeAddress()).To(Equal(key.p2pkh.EncodeAddress()))
		})
	})
})

var _ = Describe("Amounts", func() {
	It("should convert BTC to satoshis", func() {
		cases := map[string]btcutil.Amount{
			"0.001":      100000,
			"1":          100000000,
			" 0.5 ":      50000000,
			"1e-3":       100000,
			".00000001":  1,
			"0.00150000": 150000,
			"21000000":   2100000000000000,
		}
		for text, expected := range cases {
			amount, err := AmountToSatoshis(text)
			Expect(err).NotTo(HaveOccurred(), text)
			Expect(amount).To(Equal(expected), text)
		}
	})

	It("should reject amounts outside one satoshi to the total supply", func() {
		for _, text := range []string{"", "  ", "0", "-1", "-0.5", "12abc", "abc", "0x10", "inf", "NaN", "1,5", "1e400",
			"1e30", "99999999999", "21000001", "0.000000001"} {
			err := ValidateAmount(text)
			Expect(errors.Is(err, errors.ErrValidationFailed)).To(BeTrue(), text)
			Expect(IsValidAmount(text)).To(BeFalse(), text)
		}
	})
})
