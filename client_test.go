package btctransfer_test

import (
	"github.com/btcsuite/btcd/chaincfg"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	. "github.com/renproject/btctransfer"
)

var _ = Describe("Client", func() {
	It("should resolve test networks", func() {
		for name, params := range map[string]*chaincfg.Params{
			"":         &chaincfg.TestNet3Params,
			"testnet":  &chaincfg.TestNet3Params,
			"TestNet3": &chaincfg.TestNet3Params,
			"regtest":  &chaincfg.RegressionNetParams,
			"signet":   &chaincfg.SigNetParams,
			"simnet":   &chaincfg.SimNetParams,
		} {
			resolved, err := NetworkParams(name)
			Expect(err).NotTo(HaveOccurred(), name)
			Expect(resolved).To(Equal(params), name)
		}
	})

	It("should refuse mainnet and unknown networks", func() {
		for _, name := range []string{"mainnet", "bitcoin", "zcash"} {
			_, err := NetworkParams(name)
			Expect(err).To(HaveOccurred(), name)
		}
	})

	It("should link testnet transactions to a block explorer", func() {
		client := NewClient(&fakeCore{}, testNet)
		Expect(client.NetworkParams()).To(Equal(testNet))
		Expect(client.FormatTransactionView("transaction confirmed", "abcd")).To(Equal(
			"transaction confirmed, transaction can be viewed at https://live.blockcypher.com/btc-testnet/tx/abcd"))
		Expect(FormatTransactionView("sent", "abcd", &chaincfg.RegressionNetParams)).To(Equal(
			"sent, transaction hash abcd"))
	})

	It("should reject a malformed backend url", func() {
		_, err := NewBackendClient("testnet", clientOptions("ftp://example.com"), nil)
		Expect(err).To(HaveOccurred())
		_, err = NewBackendClient("mainnet", clientOptions("http://127.0.0.1:8000"), nil)
		Expect(err).To(HaveOccurred())
	})
})
