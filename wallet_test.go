package btctransfer_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	. "github.com/renproject/btctransfer"
	"github.com/tyler-smith/go-bip32"
)

var _ = Describe("Wallet", func() {
	const mnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

	It("should parse derivation paths", func() {
		path, err := ParseDerivationPath("m/44'/1'/0'/0/7")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal([]uint32{
			44 + bip32.FirstHardenedChild,
			1 + bip32.FirstHardenedChild,
			0 + bip32.FirstHardenedChild,
			0,
			7,
		}))

		path, err = ParseDerivationPath("m/84h/1h")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal([]uint32{84 + bip32.FirstHardenedChild, 1 + bip32.FirstHardenedChild}))

		path, err = ParseDerivationPath("m")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(BeEmpty())
	})

	It("should reject malformed derivation paths", func() {
		for _, path := range []string{"", "44'/1'", "m/x", "m/-1", "m/2147483648"} {
			_, err := ParseDerivationPath(path)
			Expect(err).To(HaveOccurred(), path)
		}
	})

	It("should reject invalid mnemonics", func() {
		_, err := NewWallet("abandon abandon abandon", testNet, nil)
		Expect(err).To(HaveOccurred())
	})

	It("should derive the same testnet key every time", func() {
		wallet, err := NewWallet(mnemonic, testNet, nil)
		Expect(err).NotTo(HaveOccurred())
		path, err := ParseDerivationPath("m/44'/1'/0'/0/0")
		Expect(err).NotTo(HaveOccurred())

		first, err := wallet.DeriveWIF(path, "")
		Expect(err).NotTo(HaveOccurred())
		second, err := wallet.DeriveWIF(path, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(first.String()).To(Equal(second.String()))
		Expect(first.IsForNet(testNet)).To(BeTrue())
		Expect(first.CompressPubKey).To(BeTrue())
		Expect(IsValidPrivateKey(first.String(), testNet)).To(BeTrue())

		other, err := wallet.DeriveWIF(path[:4], "")
		Expect(err).NotTo(HaveOccurred())
		Expect(other.String()).NotTo(Equal(first.String()))

		withPassphrase, err := wallet.DeriveWIF(path, "TREZOR")
		Expect(err).NotTo(HaveOccurred())
		Expect(withPassphrase.String()).NotTo(Equal(first.String()))
	})

	It("should derive keys that sign for their own address", func() {
		wallet, err := NewWallet(mnemonic, testNet, nil)
		Expect(err).NotTo(HaveOccurred())
		wif, err := wallet.DeriveWIF([]uint32{44 + bip32.FirstHardenedChild, 1 + bip32.FirstHardenedChild, bip32.FirstHardenedChild, 0, 0}, "")
		Expect(err).NotTo(HaveOccurred())
		addr, err := AddressFromWIF(wif, testNet)
		Expect(err).NotTo(HaveOccurred())

		receiver := newTestKey(0x41)
		intent, err := NewIntent(instructionsFor(addr, 150000, receiver.p2pkh.EncodeAddress(), 100000))
		Expect(err).NotTo(HaveOccurred())
		_, err = SignIntent(NewTxBuilder(testNet, nil), intent, []byte(wif.String()))
		Expect(err).NotTo(HaveOccurred())
	})
})
