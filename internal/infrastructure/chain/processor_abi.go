package chain

// paymentProcessorABI is the subset of the PaymentProcessor contract the
// dashboard calls.
const paymentProcessorABI = `[
	{
		"type": "function",
		"name": "createPaymentOrder",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "orderId", "type": "bytes32"},
			{"name": "token", "type": "address"},
			{"name": "amount", "type": "uint256"}
		],
		"outputs": []
	},
	{
		"type": "function",
		"name": "payOrder",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "orderId", "type": "bytes32"}
		],
		"outputs": []
	},
	{
		"type": "function",
		"name": "getOrder",
		"stateMutability": "view",
		"inputs": [
			{"name": "orderId", "type": "bytes32"}
		],
		"outputs": [
			{"name": "token", "type": "address"},
			{"name": "amount", "type": "uint256"},
			{"name": "paid", "type": "bool"},
			{"name": "payer", "type": "address"},
			{"name": "fee", "type": "uint256"}
		]
	},
	{
		"type": "function",
		"name": "calculateFee",
		"stateMutability": "pure",
		"inputs": [
			{"name": "amount", "type": "uint256"}
		],
		"outputs": [
			{"name": "", "type": "uint256"}
		]
	}
]`
